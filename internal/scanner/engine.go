package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/modctl/internal/mods"
)

const (
	polymodMetaFile = "_polymod_meta.json"
	polymodIconFile = "_polymod_icon.png"
	psychPackFile   = "pack.json"
	psychIconFile   = "pack.png"

	// DisabledMarker inside a sub-mod folder turns it off
	DisabledMarker = ".disabled"

	defaultModsFolder = "mods"
)

var (
	ErrNoModsFolder = errors.New("mod has no engine mods folder")
	ErrNoEngineMod  = errors.New("engine mod not found")
	ErrBadFolder    = errors.New("invalid engine mod folder name")
)

// ModsFolder resolves the engine mods folder of an installed mod
func ModsFolder(info mods.ModInfo) (string, error) {
	rel := defaultModsFolder
	if info.Engine != nil {
		if !info.Engine.ModsFolder && info.Engine.ModsFolderPath == "" {
			return "", fmt.Errorf("%w: %s", ErrNoModsFolder, info.Name)
		}
		if info.Engine.ModsFolderPath != "" {
			rel = info.Engine.ModsFolderPath
		}
	}

	dir := rel
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(info.Path, rel)
	}
	if !isDir(dir) {
		return "", fmt.Errorf("%w: %s", ErrNoModsFolder, dir)
	}
	return dir, nil
}

// EngineModFolder resolves the folder of the sub-mod called name inside the
// engine mods folder of info. Name is a bare folder name; anything that
// would leave the mods folder is refused.
func EngineModFolder(info mods.ModInfo, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrBadFolder, name)
	}

	dir, err := ModsFolder(info)
	if err != nil {
		return "", err
	}

	folder := filepath.Join(dir, name)
	if rel, err := filepath.Rel(dir, folder); err != nil || rel != name {
		return "", fmt.Errorf("%w: %q", ErrBadFolder, name)
	}
	fi, err := os.Lstat(folder)
	if err != nil || !fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoEngineMod, name)
	}
	return folder, nil
}

// EngineMods lists the sub-mods inside the engine mods folder of info
func EngineMods(info mods.ModInfo) (*mods.EngineModsResponse, error) {
	dir, err := ModsFolder(info)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	resp := &mods.EngineModsResponse{
		ExecutablePath: info.ExecutablePath,
		Mods:           []mods.ModMetadataFile{},
	}
	if info.Engine != nil {
		resp.EngineType = info.Engine.EngineType
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		resp.Mods = append(resp.Mods, ReadEngineMod(filepath.Join(dir, entry.Name())))
	}

	return resp, nil
}

// ReadEngineMod reads one sub-mod folder. Polymod metadata wins over a Psych
// pack file; with neither the folder name is used.
func ReadEngineMod(folder string) mods.ModMetadataFile {
	m := mods.ModMetadataFile{
		Name:       filepath.Base(folder),
		FolderPath: folder,
		Enabled:    mods.Ptr(!fileExists(filepath.Join(folder, DisabledMarker))),
	}

	if path := filepath.Join(folder, polymodMetaFile); fileExists(path) {
		var meta struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if readJSON(path, &meta) == nil {
			m.ConfigFilePath = path
			if meta.Title != "" {
				m.Name = meta.Title
			}
			m.Description = meta.Description
		}
	} else if path := filepath.Join(folder, psychPackFile); fileExists(path) {
		var pack struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if readJSON(path, &pack) == nil {
			m.ConfigFilePath = path
			if pack.Name != "" {
				m.Name = pack.Name
			}
			m.Description = pack.Description
		}
	}

	for _, icon := range []string{polymodIconFile, psychIconFile} {
		path := filepath.Join(folder, icon)
		if data, err := os.ReadFile(path); err == nil {
			m.IconFilePath = path
			m.IconData = mods.Blob(data)
			break
		}
	}

	return m
}

// SetEnabled toggles a sub-mod by creating or removing its disabled marker
func SetEnabled(folder string, enabled bool) mods.DisableResult {
	if !isDir(folder) {
		return mods.DisableResult{
			Success: false,
			Enabled: false,
			Message: fmt.Sprintf("mod folder not found: %s", folder),
		}
	}

	marker := filepath.Join(folder, DisabledMarker)
	if enabled {
		if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
			return mods.DisableResult{Success: false, Enabled: false, Message: err.Error()}
		}
		return mods.DisableResult{Success: true, Enabled: true, Message: "mod enabled"}
	}

	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return mods.DisableResult{Success: false, Enabled: true, Message: err.Error()}
	}
	return mods.DisableResult{Success: true, Enabled: false, Message: "mod disabled"}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
