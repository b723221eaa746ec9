package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bnema/modctl/internal/mods"
)

// Rejection is a mod folder that could not be registered
type Rejection struct {
	Path string
	Err  error
}

// ScanResult summarizes a scan of the install location
type ScanResult struct {
	Mods     []mods.ModInfo
	Rejected []Rejection
	Removed  []string // Registry ids whose folder is gone
}

// Scanner discovers installed mods under one install location
type Scanner struct {
	root     string
	validate bool
	log      *log.Logger
}

// New creates a scanner for root. When validate is set, records failing the
// metadata version gate are rejected.
func New(root string, validate bool, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		root:     root,
		validate: validate,
		log:      logger,
	}
}

// Root returns the install location
func (s *Scanner) Root() string {
	return s.root
}

// EnsureRoot creates the install location if it doesn't exist
func (s *Scanner) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create install location: %w", err)
	}
	return nil
}

// Scan reads every mod folder under the install location
func (s *Scanner) Scan() (*ScanResult, error) {
	result := &ScanResult{}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		modDir := filepath.Join(s.root, entry.Name())
		info, err := s.Load(modDir)
		if err != nil {
			s.log.Warn("Skipping mod", "path", modDir, "error", err)
			result.Rejected = append(result.Rejected, Rejection{Path: modDir, Err: err})
			continue
		}
		result.Mods = append(result.Mods, info)
	}

	s.log.Debug("Scan complete", "root", s.root, "mods", len(result.Mods), "rejected", len(result.Rejected))
	return result, nil
}

// Load reads one mod folder and applies the version gate when enabled
func (s *Scanner) Load(modDir string) (mods.ModInfo, error) {
	info, err := ReadMod(modDir)
	if err != nil {
		return mods.ModInfo{}, err
	}
	if s.validate {
		if err := info.Validate(); err != nil {
			return mods.ModInfo{}, err
		}
	}
	return info, nil
}

// Sync scans the install location and reconciles the registry with it.
// Running mods keep their process link. Mods registered before the scan whose
// folder is gone are removed unless they are still running; records committed
// or moved while the scan ran are left alone.
func (s *Scanner) Sync(registry *mods.Registry) (*ScanResult, error) {
	before := make(map[string]string)
	for _, m := range registry.List() {
		before[m.ID] = m.Path
	}

	result, err := s.Scan()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(result.Mods))
	for _, info := range result.Mods {
		seen[info.ID] = true
		if _, err := registry.Merge(info); err != nil {
			s.log.Warn("Failed to register mod", "id", info.ID, "path", info.Path, "error", err)
			result.Rejected = append(result.Rejected, Rejection{Path: info.Path, Err: err})
		}
	}

	root := filepath.Clean(s.root) + string(filepath.Separator)
	for id, path := range before {
		if seen[id] {
			continue
		}
		removed := registry.RemoveIf(id, func(m mods.ModInfo) bool {
			return !m.IsRunning() && m.Path == path && strings.HasPrefix(m.Path, root) && !exists(m.Path)
		})
		if removed {
			result.Removed = append(result.Removed, id)
			s.log.Info("Removed missing mod from registry", "id", id, "path", path)
		}
	}
	sort.Strings(result.Removed)

	return result, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
