package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/storage"
)

// UploadHandler handles multipart image uploads for listings.
type UploadHandler struct {
	images storage.ImageStore
	dev    bool
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(images storage.ImageStore, dev bool) *UploadHandler {
	return &UploadHandler{images: images, dev: dev}
}

const (
	maxUploadFiles    = 10
	maxUploadFileSize = 5 << 20 // 5MB per file
	sniffLen          = 512
)

// Images accepts up to 10 image files in the "images" multipart field
// and returns their stored URLs. File type is sniffed from content, not
// trusted from the request.
func (h *UploadHandler) Images(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFiles * maxUploadFileSize); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		respond.Fail(w, http.StatusBadRequest, "no image files provided")
		return
	}
	if len(files) > maxUploadFiles {
		respond.Fail(w, http.StatusBadRequest, "at most 10 images per upload")
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxUploadFileSize {
			respond.Fail(w, http.StatusBadRequest, "image "+fh.Filename+" exceeds the 5MB limit")
			return
		}

		f, err := fh.Open()
		if err != nil {
			log.Error().Err(err).Str("file", fh.Filename).Msg("Failed to open uploaded file")
			respond.Fail(w, http.StatusInternalServerError, "could not read upload")
			return
		}

		head := make([]byte, sniffLen)
		n, err := io.ReadFull(f, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			f.Close()
			log.Error().Err(err).Str("file", fh.Filename).Msg("Failed to read uploaded file")
			respond.Fail(w, http.StatusInternalServerError, "could not read upload")
			return
		}
		head = head[:n]

		if !strings.HasPrefix(http.DetectContentType(head), "image/") {
			f.Close()
			respond.Fail(w, http.StatusBadRequest, "file "+fh.Filename+" is not an image")
			return
		}

		url, err := h.images.Save(fh.Filename, io.MultiReader(bytes.NewReader(head), f))
		f.Close()
		if err != nil {
			log.Error().Err(err).Str("file", fh.Filename).Msg("Failed to store uploaded image")
			respond.Fail(w, http.StatusInternalServerError, "could not store image")
			return
		}
		urls = append(urls, url)
	}

	respond.List(w, http.StatusCreated, urls, len(urls))
}
