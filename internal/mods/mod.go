package mods

// LogoPosition is a layout hint for placing the logo over the banner.
// Values outside the known set are kept as-is.
type LogoPosition string

const (
	LogoLeftBottom LogoPosition = "left_bottom"
	LogoLeftMiddle LogoPosition = "left_middle"
	LogoMiddle     LogoPosition = "middle"
)

// Known reports whether p is one of the recognized positions
func (p LogoPosition) Known() bool {
	switch p {
	case LogoLeftBottom, LogoLeftMiddle, LogoMiddle:
		return true
	}
	return false
}

// Engine describes the game engine a mod runs on
type Engine struct {
	EngineType     string `json:"engine_type,omitempty"` // e.g. "psych", "codename", "vanilla"
	EngineName     string `json:"engine_name,omitempty"`
	EngineIcon     Blob   `json:"engine_icon,omitempty"`
	ModsFolder     bool   `json:"mods_folder,omitempty"`      // Engine accepts sub-mods
	ModsFolderPath string `json:"mods_folder_path,omitempty"` // Relative to the mod path
}

// Contributor is a single credited person
type Contributor struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"` // Path or encoded image
	Role string `json:"role,omitempty"`
}

// ContributorGroup is a named section of the credits
type ContributorGroup struct {
	Group   string        `json:"group"`
	Members []Contributor `json:"members"`
}

// ModInfo is the registry record for one installed mod
type ModInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"` // Install root

	MetadataVersion *uint32 `json:"metadata_version"`

	Description    string `json:"description,omitempty"`
	ExecutablePath string `json:"executable_path,omitempty"`
	Version        string `json:"version,omitempty"`

	IconData     Blob         `json:"icon_data,omitempty"`
	BannerData   Blob         `json:"banner_data,omitempty"`
	LogoData     Blob         `json:"logo_data,omitempty"`
	LogoPosition LogoPosition `json:"logo_position,omitempty"`

	Engine       *Engine            `json:"engine,omitempty"`
	DisplayOrder *int64             `json:"display_order,omitempty"`
	ProcessID    *int               `json:"process_id,omitempty"` // Set only while running
	Contributors []ContributorGroup `json:"contributors,omitempty"`

	LastPlayed *int64 `json:"last_played,omitempty"` // Unix seconds
	DateAdded  *int64 `json:"date_added,omitempty"`  // Unix seconds
}

// IsRunning returns true while a process is linked to the mod
func (m *ModInfo) IsRunning() bool {
	return m.ProcessID != nil
}

// Validate runs the metadata version gate on the record
func (m *ModInfo) Validate() error {
	return ValidateMetadataVersion(m.MetadataVersion)
}

// Clone returns a deep copy that shares no memory with m
func (m ModInfo) Clone() ModInfo {
	c := m
	c.MetadataVersion = clonePtr(m.MetadataVersion)
	c.DisplayOrder = clonePtr(m.DisplayOrder)
	c.ProcessID = clonePtr(m.ProcessID)
	c.LastPlayed = clonePtr(m.LastPlayed)
	c.DateAdded = clonePtr(m.DateAdded)
	c.IconData = m.IconData.Clone()
	c.BannerData = m.BannerData.Clone()
	c.LogoData = m.LogoData.Clone()

	if m.Engine != nil {
		e := *m.Engine
		e.EngineIcon = m.Engine.EngineIcon.Clone()
		c.Engine = &e
	}

	if m.Contributors != nil {
		c.Contributors = make([]ContributorGroup, len(m.Contributors))
		for i, g := range m.Contributors {
			c.Contributors[i] = ContributorGroup{Group: g.Group}
			if g.Members != nil {
				c.Contributors[i].Members = append([]Contributor(nil), g.Members...)
			}
		}
	}

	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v, handy for optional fields
func Ptr[T any](v T) *T {
	return &v
}
