package media

import (
	"bytes"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimePDF  = "application/pdf"
)

// evidenceExtensions are the accepted evidence formats and the extension
// they are stored with.
var evidenceExtensions = map[string]string{
	MimeJPEG: ".jpg",
	MimePNG:  ".png",
	MimePDF:  ".pdf",
}

// sniffLen is how much of an upload is inspected to detect its format.
const sniffLen = 3072

// IsRasterImage reports whether the content type can be decoded into an image.
func IsRasterImage(contentType string) bool {
	return contentType == MimeJPEG || contentType == MimePNG
}

// DetectEvidenceType inspects the head of r and returns the detected content
// type, the extension to store it with, and a reader replaying the full
// stream. ok is false when the format is not accepted as evidence.
func DetectEvidenceType(r io.Reader) (contentType, ext string, replay io.Reader, ok bool, err error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", "", nil, false, err
	}
	head = head[:n]
	replay = io.MultiReader(bytes.NewReader(head), r)

	mtype := mimetype.Detect(head)
	for accepted, extension := range evidenceExtensions {
		if mtype.Is(accepted) {
			return accepted, extension, replay, true, nil
		}
	}
	return mtype.String(), "", replay, false, nil
}
