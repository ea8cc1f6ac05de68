// media/types.go
package media

import "time"

type AssetType string

const (
	AssetTypeEvidence  AssetType = "evidence"
	AssetTypeThumbnail AssetType = "thumbnail"
)

// Metadata is what we read from an evidence photo.
type Metadata struct {
	TakenAt *time.Time `json:"taken_at,omitempty"`
}

// StoredEvidence describes an evidence file after it was written to the store.
// Paths are relative to the storage root.
type StoredEvidence struct {
	Path          string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	TakenAt       *time.Time
}
