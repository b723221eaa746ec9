package mods

import (
	"errors"
	"fmt"
)

const (
	// MinMetadataVersion is the oldest metadata schema this build accepts
	MinMetadataVersion uint32 = 1
	// CurrentMetadataVersion is the schema written by this build
	CurrentMetadataVersion uint32 = 1
)

var (
	ErrMissingVersion = errors.New("missing required metadata_version field")
	ErrVersionTooLow  = errors.New("metadata version too old")
)

// MetadataError is returned by the version gate
type MetadataError struct {
	Kind     error // ErrMissingVersion or ErrVersionTooLow
	Provided uint32
	Minimum  uint32
}

func (e *MetadataError) Error() string {
	if e.Kind == ErrVersionTooLow {
		return fmt.Sprintf("metadata version %d is too old, minimum supported version is %d", e.Provided, e.Minimum)
	}
	return e.Kind.Error()
}

// Is lets errors.Is match the error kind
func (e *MetadataError) Is(target error) bool {
	return target == e.Kind
}

// ValidateMetadataVersion checks a metadata version against the supported floor.
// Versions newer than CurrentMetadataVersion pass so older builds can still read
// metadata written by newer ones.
func ValidateMetadataVersion(v *uint32) error {
	if v == nil {
		return &MetadataError{Kind: ErrMissingVersion, Minimum: MinMetadataVersion}
	}
	if *v < MinMetadataVersion {
		return &MetadataError{Kind: ErrVersionTooLow, Provided: *v, Minimum: MinMetadataVersion}
	}
	return nil
}
