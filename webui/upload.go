// upload.go contains the reference image upload handler. Uploads are
// sniffed for an image type, renamed to a fresh UUID, and stored under the
// uploads directory which the server exposes read-only.
package webui

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"artgen_backend/core"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// uploadExtensions maps accepted sniffed content types to the stored
// file extension. Anything else is rejected.
var uploadExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// handleUpload serves POST /api/upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "method_not_allowed",
			Message: "use POST",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.MaxUploadSize); err != nil {
		s.writeError(w, core.NewValidationError("upload exceeds size limit or is not multipart"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, core.NewValidationError("missing image field"))
		return
	}
	defer file.Close()

	// Sniff the real content type; the client-declared one is not trusted.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		s.writeError(w, core.NewValidationError("unreadable upload"))
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := uploadExtensions[contentType]
	if !ok {
		s.writeError(w, core.NewValidationError(fmt.Sprintf("unsupported file type %s", contentType)))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, core.NewValidationError("unreadable upload"))
		return
	}

	if err := os.MkdirAll(s.config.UploadsDir, 0o755); err != nil {
		s.logger.Error("creating uploads directory failed", zap.Error(err))
		s.writeError(w, err)
		return
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.config.UploadsDir, name)
	dst, err := os.Create(path)
	if err != nil {
		s.logger.Error("creating upload file failed", zap.Error(err))
		s.writeError(w, err)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		s.logger.Error("writing upload failed", zap.Error(err))
		s.writeError(w, err)
		return
	}

	s.logger.Info("upload stored",
		zap.String("filename", name),
		zap.String("content_type", contentType),
		zap.Int64("size", size))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": name,
		"url":      "/uploads/" + name,
		"size":     size,
	})
}
