package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/bnema/modctl/internal/mods"
)

const (
	// MetadataFileName is the per-mod metadata file
	MetadataFileName = "metadata.json"
	// IconFileName is picked up as icon_data when metadata carries none
	IconFileName = "icon.png"
)

// FindMetadataFile looks for metadata.json in the mod root, then in its
// immediate subdirectories (archives often wrap everything in one folder)
func FindMetadataFile(modDir string) (string, error) {
	root := filepath.Join(modDir, MetadataFileName)
	if _, err := os.Stat(root); err == nil {
		return root, nil
	}

	entries, err := os.ReadDir(modDir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		candidate := filepath.Join(modDir, entry.Name(), MetadataFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", os.ErrNotExist
}

// ParseMetadata decodes a metadata.json file. Runtime-only fields are dropped.
func ParseMetadata(path string) (mods.ModInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mods.ModInfo{}, err
	}

	var info mods.ModInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return mods.ModInfo{}, fmt.Errorf("malformed %s: %w", filepath.Base(path), err)
	}

	info.ProcessID = nil
	return info, nil
}

// ModID derives a stable id from the absolute install path
func ModID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String()
}

// ReadMod builds the registry record for the mod installed in modDir.
// Without a metadata file the record is synthesized from the folder and
// stamped with the current metadata version.
func ReadMod(modDir string) (mods.ModInfo, error) {
	abs, err := filepath.Abs(modDir)
	if err != nil {
		return mods.ModInfo{}, err
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return mods.ModInfo{}, err
	}
	if !stat.IsDir() {
		return mods.ModInfo{}, fmt.Errorf("not a directory: %s", abs)
	}

	var info mods.ModInfo
	metaPath, err := FindMetadataFile(abs)
	if err == nil {
		info, err = ParseMetadata(metaPath)
		if err != nil {
			return mods.ModInfo{}, err
		}
	} else {
		info = mods.ModInfo{
			MetadataVersion: mods.Ptr(mods.CurrentMetadataVersion),
		}
		if dir := filepath.Join(abs, "mods"); isDir(dir) {
			info.Engine = &mods.Engine{ModsFolder: true, ModsFolderPath: "mods"}
		}
	}

	info.Path = abs
	if info.ID == "" {
		info.ID = ModID(abs)
	}
	if info.Name == "" {
		info.Name = filepath.Base(abs)
	}

	if info.ExecutablePath == "" {
		info.ExecutablePath = findExecutable(abs)
	} else if !filepath.IsAbs(info.ExecutablePath) {
		info.ExecutablePath = filepath.Join(abs, info.ExecutablePath)
	}

	if !info.IconData.Present() {
		if data, err := os.ReadFile(filepath.Join(abs, IconFileName)); err == nil {
			info.IconData = mods.Blob(data)
		}
	}

	if info.DateAdded == nil {
		info.DateAdded = mods.Ptr(stat.ModTime().Unix())
	}

	return info, nil
}

// findExecutable returns the first launchable file in the mod root
func findExecutable(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var fallback string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), ".exe") {
			return filepath.Join(dir, name)
		}
		if runtime.GOOS != "windows" && fallback == "" && filepath.Ext(name) == "" {
			if fi, err := entry.Info(); err == nil && fi.Mode()&0111 != 0 {
				fallback = filepath.Join(dir, name)
			}
		}
	}
	return fallback
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
