package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/agencybackend/media"
)

const (
	uploadFormField    = "files"
	multipartMemoryMax = 8 << 20

	msgNoValidImages  = "No valid image files uploaded"
	msgUploadTooLarge = "Upload exceeds the size limit"
	msgInvalidUpload  = "Invalid multipart upload"
	msgFailedUpload   = "Failed to store upload"
)

// ImageProcessor stores one uploaded image and its thumbnail.
type ImageProcessor interface {
	ProcessUpload(filename string, data io.Reader) (*media.StoredImage, error)
}

type UploadHandler struct {
	Processor ImageProcessor
	MaxBytes  int64
	// AssetURLPrefix is prepended to storage-relative paths to build public URLs.
	AssetURLPrefix string
	Log            logrus.FieldLogger
}

func NewUploadHandler(processor ImageProcessor, maxBytes int64, assetURLPrefix string, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{Processor: processor, MaxBytes: maxBytes, AssetURLPrefix: assetURLPrefix, Log: log}
}

type uploadedImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// UploadImages handles POST /api/uploads. Files that are not accepted images
// are skipped; the request fails only when none remain.
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(multipartMemoryMax); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, msgUploadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidUpload)
		return
	}
	defer r.MultipartForm.RemoveAll()

	stored := []uploadedImage{}
	for _, fh := range r.MultipartForm.File[uploadFormField] {
		if !media.IsRasterImage(fh.Filename) {
			h.Log.WithField("file", fh.Filename).Warn("skipping upload with unsupported extension")
			continue
		}

		file, err := fh.Open()
		if err != nil {
			h.Log.WithError(err).WithField("file", fh.Filename).Warn("failed to open uploaded file")
			continue
		}
		img, err := h.Processor.ProcessUpload(fh.Filename, file)
		file.Close()
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedImage) {
				h.Log.WithError(err).Warn("skipping undecodable upload")
				continue
			}
			h.Log.WithError(err).Error("failed to process upload")
			writeError(w, http.StatusInternalServerError, msgFailedUpload)
			return
		}

		stored = append(stored, uploadedImage{
			URL:          h.AssetURLPrefix + img.OriginalPath,
			ThumbnailURL: h.AssetURLPrefix + img.ThumbnailPath,
			Width:        img.Width,
			Height:       img.Height,
		})
	}

	if len(stored) == 0 {
		writeError(w, http.StatusBadRequest, msgNoValidImages)
		return
	}
	writeData(w, http.StatusCreated, stored)
}
