package gamebanana

import "time"

// Mod is a catalog listing entry as shown to the user. It is read-only
// display data, never merged into the mods registry directly.
type Mod struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Owner        string `json:"owner"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DownloadURL  string `json:"downloadUrl"`
	Views        int64  `json:"views"`
	Downloads    int64  `json:"downloads"`
	Likes        int64  `json:"likes"`

	ModelName         string `json:"modelName"`
	ProfileURL        string `json:"profileUrl"`
	ImageURL          string `json:"imageUrl"`
	InitialVisibility string `json:"initialVisibility"`
	Period            string `json:"period"`

	// Submitter
	SubmitterID         int64   `json:"submitterId"`
	SubmitterName       string  `json:"submitterName"`
	SubmitterIsOnline   bool    `json:"submitterIsOnline"`
	SubmitterHasRipe    bool    `json:"submitterHasRipe"`
	SubmitterProfileURL string  `json:"submitterProfileUrl"`
	SubmitterAvatarURL  string  `json:"submitterAvatarUrl"`
	SubmitterMoreByURL  string  `json:"submitterMoreByUrl"`
	SubmitterUPic       *string `json:"submitterUPic"`

	PostCount int64 `json:"postCount"`

	// Category
	CategoryName       string `json:"categoryName"`
	CategoryProfileURL string `json:"categoryProfileUrl"`
	CategoryIconURL    string `json:"categoryIconUrl"`

	SingularTitle     string     `json:"singularTitle"`
	IconClasses       string     `json:"iconClasses"`
	DateAdded         int64      `json:"dateAdded"`
	DateModified      int64      `json:"dateModified"`
	DateUpdated       int64      `json:"dateUpdated"`
	HasFiles          bool       `json:"hasFiles"`
	Tags              []string   `json:"tags"`
	PreviewImages     []ModImage `json:"previewImages"`
	Version           string     `json:"version"`
	IsObsolete        bool       `json:"isObsolete"`
	HasContentRatings bool       `json:"hasContentRatings"`
	ViewCount         int64      `json:"viewCount"`
	IsOwnedByAccessor bool       `json:"isOwnedByAccessor"`
	WasFeatured       bool       `json:"wasFeatured"`
}

// Added returns DateAdded as a time
func (m Mod) Added() time.Time {
	return time.Unix(m.DateAdded, 0)
}

// ModImage is a preview image with up to four resolution variants
type ModImage struct {
	ImageType string  `json:"imageType"`
	BaseURL   string  `json:"baseUrl"`
	FileName  string  `json:"fileName"`
	File100   string  `json:"file100"`
	File220   *string `json:"file220"`
	File530   *string `json:"file530"`
	File800   *string `json:"file800"`
	Height100 *int64  `json:"height100"`
	Width100  *int64  `json:"width100"`
	Height220 *int64  `json:"height220"`
	Width220  *int64  `json:"width220"`
	Height530 *int64  `json:"height530"`
	Width530  *int64  `json:"width530"`
	Height800 *int64  `json:"height800"`
	Width800  *int64  `json:"width800"`
}

// URL returns the full-size image URL
func (i ModImage) URL() string {
	return joinURL(i.BaseURL, i.FileName)
}

// Thumbnail returns the smallest variant that is at least 220px wide,
// falling back to the 100px file
func (i ModImage) Thumbnail() string {
	for _, f := range []*string{i.File220, i.File530, i.File800} {
		if f != nil && *f != "" {
			return joinURL(i.BaseURL, *f)
		}
	}
	if i.File100 != "" {
		return joinURL(i.BaseURL, i.File100)
	}
	return i.URL()
}

// Response is one page of catalog results
type Response struct {
	Mods  []Mod `json:"mods"`
	Total int64 `json:"total"`
}

func joinURL(base, file string) string {
	if base == "" {
		return file
	}
	if file == "" {
		return base
	}
	return base + "/" + file
}
