package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//
// ===================== UPLOADS =====================
//

// POST /uploads
// Multipart upload stored on disk under a uuid-prefixed name; the body is
// capped at the configured size (10MB by default).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.UploadMaxBytes)

	if err := r.ParseMultipartForm(h.cfg.UploadMaxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.cfg.UploadsPath, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// flatten the client-supplied name and prefix it so collisions are
	// impossible
	base := filepath.Base(header.Filename)
	base = strings.ReplaceAll(base, " ", "_")
	name := uuid.New().String() + "_" + base

	dst, err := os.Create(filepath.Join(h.cfg.UploadsPath, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	log.Info().Str("file", name).Int64("size", size).Msg("upload stored")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"path":     fmt.Sprintf("/uploads/%s", name),
		"fileName": base,
		"size":     size,
	})
}

// GET /uploads/{name}
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// keep requests inside the uploads directory
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	path := filepath.Join(h.cfg.UploadsPath, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, path)
}
