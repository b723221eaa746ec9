package gamebanana

import (
	"encoding/json"
	"fmt"
)

// Raw apiv11 payloads. Only the fields modctl shows are decoded.

type apiIndex struct {
	Metadata struct {
		RecordCount int64 `json:"_nRecordCount"`
	} `json:"_aMetadata"`
	Records []apiRecord `json:"_aRecords"`
}

type apiRecord struct {
	ID                int64             `json:"_idRow"`
	ModelName         string            `json:"_sModelName"`
	SingularTitle     string            `json:"_sSingularTitle"`
	IconClasses       string            `json:"_sIconClasses"`
	Name              string            `json:"_sName"`
	ProfileURL        string            `json:"_sProfileUrl"`
	Text              string            `json:"_sText"`
	InitialVisibility string            `json:"_sInitialVisibility"`
	Period            string            `json:"_sPeriod"`
	Version           string            `json:"_sVersion"`
	DateAdded         int64             `json:"_tsDateAdded"`
	DateModified      int64             `json:"_tsDateModified"`
	DateUpdated       int64             `json:"_tsDateUpdated"`
	HasFiles          bool              `json:"_bHasFiles"`
	HasContentRatings bool              `json:"_bHasContentRatings"`
	IsObsolete        bool              `json:"_bIsObsolete"`
	IsOwnedByAccessor bool              `json:"_bIsOwnedByAccessor"`
	WasFeatured       bool              `json:"_bWasFeatured"`
	LikeCount         int64             `json:"_nLikeCount"`
	PostCount         int64             `json:"_nPostCount"`
	ViewCount         int64             `json:"_nViewCount"`
	DownloadCount     int64             `json:"_nDownloadCount"`
	Tags              []json.RawMessage `json:"_aTags"`
	Submitter         apiSubmitter      `json:"_aSubmitter"`
	RootCategory      apiCategory       `json:"_aRootCategory"`
	PreviewMedia      struct {
		Images []apiImage `json:"_aImages"`
	} `json:"_aPreviewMedia"`
	Files []apiFile `json:"_aFiles"`
}

type apiSubmitter struct {
	ID         int64   `json:"_idRow"`
	Name       string  `json:"_sName"`
	IsOnline   bool    `json:"_bIsOnline"`
	HasRipe    bool    `json:"_bHasRipe"`
	ProfileURL string  `json:"_sProfileUrl"`
	AvatarURL  string  `json:"_sAvatarUrl"`
	MoreByURL  string  `json:"_sMoreByUrl"`
	UPicURL    *string `json:"_sUpicUrl"`
}

type apiCategory struct {
	Name       string `json:"_sName"`
	ProfileURL string `json:"_sProfileUrl"`
	IconURL    string `json:"_sIconUrl"`
}

type apiImage struct {
	Type    string  `json:"_sType"`
	BaseURL string  `json:"_sBaseUrl"`
	File    string  `json:"_sFile"`
	File100 string  `json:"_sFile100"`
	File220 *string `json:"_sFile220"`
	File530 *string `json:"_sFile530"`
	File800 *string `json:"_sFile800"`
	H100    *int64  `json:"_hFile100"`
	W100    *int64  `json:"_wFile100"`
	H220    *int64  `json:"_hFile220"`
	W220    *int64  `json:"_wFile220"`
	H530    *int64  `json:"_hFile530"`
	W530    *int64  `json:"_wFile530"`
	H800    *int64  `json:"_hFile800"`
	W800    *int64  `json:"_wFile800"`
}

type apiFile struct {
	ID            int64  `json:"_idRow"`
	File          string `json:"_sFile"`
	Filesize      int64  `json:"_nFilesize"`
	DownloadURL   string `json:"_sDownloadUrl"`
	DownloadCount int64  `json:"_nDownloadCount"`
}

func (r apiRecord) toMod() Mod {
	m := Mod{
		ID:                  r.ID,
		Name:                r.Name,
		Owner:               r.Submitter.Name,
		Description:         r.Text,
		Likes:               r.LikeCount,
		Views:               r.ViewCount,
		ViewCount:           r.ViewCount,
		Downloads:           r.DownloadCount,
		ModelName:           r.ModelName,
		ProfileURL:          r.ProfileURL,
		InitialVisibility:   r.InitialVisibility,
		Period:              r.Period,
		SubmitterID:         r.Submitter.ID,
		SubmitterName:       r.Submitter.Name,
		SubmitterIsOnline:   r.Submitter.IsOnline,
		SubmitterHasRipe:    r.Submitter.HasRipe,
		SubmitterProfileURL: r.Submitter.ProfileURL,
		SubmitterAvatarURL:  r.Submitter.AvatarURL,
		SubmitterMoreByURL:  r.Submitter.MoreByURL,
		SubmitterUPic:       r.Submitter.UPicURL,
		PostCount:           r.PostCount,
		CategoryName:        r.RootCategory.Name,
		CategoryProfileURL:  r.RootCategory.ProfileURL,
		CategoryIconURL:     r.RootCategory.IconURL,
		SingularTitle:       r.SingularTitle,
		IconClasses:         r.IconClasses,
		DateAdded:           r.DateAdded,
		DateModified:        r.DateModified,
		DateUpdated:         r.DateUpdated,
		HasFiles:            r.HasFiles,
		Tags:                decodeTags(r.Tags),
		Version:             r.Version,
		IsObsolete:          r.IsObsolete,
		HasContentRatings:   r.HasContentRatings,
		IsOwnedByAccessor:   r.IsOwnedByAccessor,
		WasFeatured:         r.WasFeatured,
	}

	for _, img := range r.PreviewMedia.Images {
		m.PreviewImages = append(m.PreviewImages, ModImage{
			ImageType: img.Type,
			BaseURL:   img.BaseURL,
			FileName:  img.File,
			File100:   img.File100,
			File220:   img.File220,
			File530:   img.File530,
			File800:   img.File800,
			Height100: img.H100,
			Width100:  img.W100,
			Height220: img.H220,
			Width220:  img.W220,
			Height530: img.H530,
			Width530:  img.W530,
			Height800: img.H800,
			Width800:  img.W800,
		})
	}
	if len(m.PreviewImages) > 0 {
		m.ThumbnailURL = m.PreviewImages[0].Thumbnail()
		m.ImageURL = m.PreviewImages[0].URL()
	}

	var fileDownloads int64
	for _, f := range r.Files {
		fileDownloads += f.DownloadCount
		if m.DownloadURL == "" && f.DownloadURL != "" {
			m.DownloadURL = f.DownloadURL
		}
	}
	if m.Downloads == 0 {
		m.Downloads = fileDownloads
	}
	if m.DownloadURL == "" && r.ID != 0 {
		m.DownloadURL = fmt.Sprintf("https://gamebanana.com/mods/download/%d", r.ID)
	}

	return m
}

// decodeTags accepts both plain string tags and {_sTitle, _sValue} objects
func decodeTags(raw []json.RawMessage) []string {
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			tags = append(tags, s)
			continue
		}
		var obj struct {
			Title string `json:"_sTitle"`
			Value string `json:"_sValue"`
		}
		if err := json.Unmarshal(r, &obj); err == nil {
			if obj.Value != "" {
				tags = append(tags, obj.Value)
			} else if obj.Title != "" {
				tags = append(tags, obj.Title)
			}
		}
	}
	return tags
}
