package admin

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
)

// maxUploadBytes bounds one upload request.
const maxUploadBytes = 20 << 20

var allowedUploadExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

type uploadedFile struct {
	OriginalName string `json:"original_name"`
	SavedName    string `json:"saved_name"`
	URL          string `json:"url"`
}

// handleUpload stores an uploaded image under a generated name and returns
// its public URL. Responses use the code/message/success envelope.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user, _ := h.currentUser(r)
	if user == nil {
		httpx.RespondCode(w, http.StatusUnauthorized, "not logged in", false)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondCode(w, http.StatusBadRequest, "no file uploaded", false)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		httpx.RespondCode(w, http.StatusBadRequest, "no file uploaded", false)
		return
	}

	uploadDir := h.site.UploadDir
	if uploadDir == "" {
		uploadDir = "static/uploads"
	}
	var saved []uploadedFile
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			ext := strings.ToLower(filepath.Ext(header.Filename))
			if _, ok := allowedUploadExts[ext]; !ok {
				httpx.RespondCode(w, http.StatusBadRequest, "unsupported file type, allowed: jpg, jpeg, png, gif", false)
				return
			}
			file, err := header.Open()
			if err != nil {
				httpx.RespondCode(w, http.StatusInternalServerError, "upload failed", false)
				return
			}
			name := uuid.New().String() + ext
			if err := os.MkdirAll(uploadDir, 0o755); err != nil {
				file.Close()
				h.logger.Error("create upload dir", slog.Any("error", err))
				httpx.RespondCode(w, http.StatusInternalServerError, "upload failed", false)
				return
			}
			dst, err := os.Create(filepath.Join(uploadDir, name))
			if err != nil {
				file.Close()
				h.logger.Error("create upload file", slog.Any("error", err))
				httpx.RespondCode(w, http.StatusInternalServerError, "upload failed", false)
				return
			}
			_, copyErr := io.Copy(dst, file)
			file.Close()
			if closeErr := dst.Close(); copyErr == nil {
				copyErr = closeErr
			}
			if copyErr != nil {
				h.logger.Error("write upload", slog.Any("error", copyErr))
				httpx.RespondCode(w, http.StatusInternalServerError, "upload failed", false)
				return
			}
			urlPrefix := h.site.UploadURLPrefix
			if urlPrefix == "" {
				urlPrefix = "/" + uploadDir
			}
			saved = append(saved, uploadedFile{
				OriginalName: header.Filename,
				SavedName:    name,
				URL:          path.Join(urlPrefix, name),
			})
		}
	}
	if len(saved) == 0 {
		httpx.RespondCode(w, http.StatusBadRequest, "no file uploaded", false)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.CodeBody{
		Code:    http.StatusOK,
		Message: "upload success",
		Success: true,
		Data:    saved[0],
	})
}
