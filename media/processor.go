package media

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ThumbnailJpegQuality   = 85
	ThumbnailFileExtension = ".jpg"
)

// ErrUnsupportedEvidence is returned for uploads that are not jpeg, png or pdf.
var ErrUnsupportedEvidence = errors.New("unsupported evidence format")

// Processor stores acta evidence and derives thumbnails from it. It relies on
// a Store implementation for saving the results.
type Processor struct {
	store            Store
	thumbnailMaxSize int
	logger           *zap.Logger
}

func NewProcessor(store Store, thumbnailMaxSize int, logger *zap.Logger) *Processor {
	return &Processor{store: store, thumbnailMaxSize: thumbnailMaxSize, logger: logger}
}

// StoreEvidence sniffs, saves and post-processes one evidence upload. Raster
// images also get a thumbnail and, when present, their EXIF capture time.
// Failing to build the thumbnail does not fail the upload.
func (p *Processor) StoreEvidence(data io.Reader) (*StoredEvidence, error) {
	contentType, ext, replay, ok, err := DetectEvidenceType(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvidence, contentType)
	}

	counter := &countingReader{r: replay}
	relPath, err := p.store.Save(AssetTypeEvidence, time.Now().Format("2006/01"), uuid.NewString()+ext, counter)
	if err != nil {
		return nil, fmt.Errorf("failed to save evidence: %w", err)
	}

	stored := &StoredEvidence{Path: relPath, ContentType: contentType, Size: counter.n}
	if IsRasterImage(contentType) {
		p.processRaster(stored)
	}

	p.logger.Info("stored acta evidence",
		zap.String("path", stored.Path),
		zap.String("content_type", contentType),
		zap.Int64("bytes", stored.Size),
	)
	return stored, nil
}

func (p *Processor) processRaster(stored *StoredEvidence) {
	file, _, err := p.store.Get(stored.Path)
	if err != nil {
		p.logger.Warn("could not reopen evidence", zap.String("path", stored.Path), zap.Error(err))
		return
	}
	defer file.Close()

	seeker, ok := file.(io.ReadSeeker)
	if !ok {
		return
	}

	if meta, err := ReadMetadata(seeker); err == nil {
		stored.TakenAt = meta.TakenAt
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return
	}

	img, err := imaging.Decode(seeker, imaging.AutoOrientation(true))
	if err != nil {
		p.logger.Warn("could not decode evidence image", zap.String("path", stored.Path), zap.Error(err))
		return
	}
	thumbPath, err := p.GenerateThumbnail(img, stored.Path, p.thumbnailMaxSize)
	if err != nil {
		p.logger.Warn("could not generate thumbnail", zap.String("path", stored.Path), zap.Error(err))
		return
	}
	stored.ThumbnailPath = &thumbPath
}

// GenerateThumbnail creates a thumbnail where the longest side is at most
// maxSize and returns its relative path.
func (p *Processor) GenerateThumbnail(originalImg image.Image, originalRelPath string, maxSize int) (string, error) {
	bounds := originalImg.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", fmt.Errorf("invalid original image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	thumb := imaging.Fit(originalImg, maxSize, maxSize, imaging.Lanczos)

	reader, writer := io.Pipe()
	go func() {
		err := imaging.Encode(writer, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality))
		writer.CloseWithError(err)
	}()

	savedRelPath, err := p.store.Save(AssetTypeThumbnail, "", uuid.NewString()+ThumbnailFileExtension, reader)
	reader.Close()
	if err != nil {
		return "", fmt.Errorf("failed to save thumbnail via store: %w", err)
	}

	p.logger.Debug("generated thumbnail", zap.String("source", originalRelPath), zap.String("path", savedRelPath))
	return savedRelPath, nil
}

// Discard removes the files of an evidence whose acta was not recorded.
func (p *Processor) Discard(stored *StoredEvidence) {
	if stored == nil {
		return
	}
	if err := p.store.Delete(stored.Path); err != nil {
		p.logger.Error("failed to remove orphaned evidence", zap.String("path", stored.Path), zap.Error(err))
	}
	if stored.ThumbnailPath != nil {
		if err := p.store.Delete(*stored.ThumbnailPath); err != nil {
			p.logger.Error("failed to remove orphaned thumbnail", zap.String("path", *stored.ThumbnailPath), zap.Error(err))
		}
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
