package media

import (
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// ReadMetadata extracts the capture time from an evidence photo. A file
// without EXIF is not an error; TakenAt is left nil then.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	meta := &Metadata{}

	exifData, err := exif.Decode(r)
	if err != nil {
		return meta, nil
	}
	if dt, err := exifData.DateTime(); err == nil {
		meta.TakenAt = &dt
	}
	return meta, nil
}
