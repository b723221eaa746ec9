package mods

// ModMetadataFile is mod metadata as read from disk, before it becomes a
// registry record. Engines that load sub-mods use it for their mods folder.
type ModMetadataFile struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	FolderPath     string `json:"folder_path"`
	ConfigFilePath string `json:"config_file_path,omitempty"`
	IconFilePath   string `json:"icon_file_path,omitempty"`
	IconData       Blob   `json:"icon_data,omitempty"`
	Enabled        *bool  `json:"enabled,omitempty"`
}

// IsEnabled treats a missing flag as enabled
func (f ModMetadataFile) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// DisableResult is returned by enable/disable toggles
type DisableResult struct {
	Success bool   `json:"success"`
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// EngineModsResponse groups the sub-mods of an engine
type EngineModsResponse struct {
	EngineType     string            `json:"engine_type"`
	ExecutablePath string            `json:"executable_path"`
	Mods           []ModMetadataFile `json:"mods"`
}
