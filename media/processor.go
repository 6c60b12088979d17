package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ThumbnailJpegQuality   = 90
	ThumbnailFileExtension = ".jpg"
)

// ErrUnsupportedImage marks an upload that is not a decodable raster image
// with an accepted extension.
var ErrUnsupportedImage = errors.New("unsupported image")

// Processor stores uploaded images and derives their thumbnails.
type Processor struct {
	store            Store
	thumbnailMaxSize int
	log              logrus.FieldLogger
}

func NewProcessor(store Store, thumbnailMaxSize int, log logrus.FieldLogger) *Processor {
	return &Processor{store: store, thumbnailMaxSize: thumbnailMaxSize, log: log}
}

// ProcessUpload validates an uploaded image, stores the original under a
// generated name and writes a thumbnail next to it.
func (p *Processor) ProcessUpload(filename string, data io.Reader) (*StoredImage, error) {
	if !IsRasterImage(filename) {
		return nil, fmt.Errorf("%w: extension of '%s' is not accepted", ErrUnsupportedImage, filename)
	}

	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload '%s': %w", filename, err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, filename, err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for upload: %w", err)
	}

	originalPath, err := p.store.Save(AssetTypeUpload, id.String()+normalizedExt(filename), bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to save upload via store: %w", err)
	}

	thumbPath, err := p.GenerateThumbnail(img, id.String())
	if err != nil {
		if delErr := p.store.Delete(originalPath); delErr != nil {
			p.log.WithError(delErr).Warn("failed to remove upload after thumbnail failure")
		}
		return nil, err
	}

	bounds := img.Bounds()
	return &StoredImage{
		OriginalPath:  originalPath,
		ThumbnailPath: thumbPath,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
	}, nil
}

// GenerateThumbnail creates a thumbnail where the longest side matches the
// configured maximum and saves it as <name>.jpg. Smaller images keep their size.
func (p *Processor) GenerateThumbnail(originalImg image.Image, name string) (string, error) {
	newWidth, newHeight, err := thumbnailSize(originalImg.Bounds(), p.thumbnailMaxSize)
	if err != nil {
		return "", err
	}

	thumb := imaging.Resize(originalImg, newWidth, newHeight, imaging.Lanczos)

	reader, writer := io.Pipe()
	go func() {
		err := imaging.Encode(writer, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality))
		if err != nil {
			writer.CloseWithError(fmt.Errorf("thumbnail encoding failed: %w", err))
			return
		}
		writer.Close()
	}()

	savedRelPath, err := p.store.Save(AssetTypeThumbnail, name+ThumbnailFileExtension, reader)
	reader.Close()
	if err != nil {
		return "", fmt.Errorf("failed to save thumbnail via store: %w", err)
	}

	p.log.WithField("thumbnail", savedRelPath).Debug("generated thumbnail")
	return savedRelPath, nil
}

func thumbnailSize(bounds image.Rectangle, maxSize int) (int, int, error) {
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return 0, 0, fmt.Errorf("invalid original image dimensions: %dx%d", origWidth, origHeight)
	}

	longest := max(origWidth, origHeight)
	if longest <= maxSize {
		return origWidth, origHeight, nil
	}

	scale := float64(maxSize) / float64(longest)
	newWidth := max(1, int(math.Round(float64(origWidth)*scale)))
	newHeight := max(1, int(math.Round(float64(origHeight)*scale)))
	return newWidth, newHeight, nil
}
