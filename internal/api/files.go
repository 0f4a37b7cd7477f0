package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seonho/docvault/internal/docvault"
	"github.com/seonho/docvault/internal/pipeline"
	"github.com/seonho/docvault/internal/repository"
)

const maxUploadSize = 50 << 20 // 50MB

// uploadFile stores the multipart payload as an object and registers a
// pending file record for it. Extraction is a separate, explicit step.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large (max 50MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file")
		return
	}

	id := docvault.GenerateID("file")
	path := userID + "/" + id + "/" + header.Filename

	if err := s.store.Upload(r.Context(), path, contentType, data); err != nil {
		slog.Error("object upload failed", "path", path, "err", err)
		writeError(w, http.StatusInternalServerError, "store file")
		return
	}

	now := time.Now()
	rec := &docvault.FileRecord{
		ID:           id,
		Path:         path,
		OriginalName: header.Filename,
		FileType:     contentType,
		Status:       docvault.StatusPending,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "create file record")
		return
	}

	slog.Info("file uploaded", "path", path, "user_id", userID, "content_type", contentType, "size", len(data))
	writeJSON(w, http.StatusCreated, rec)
}

type extractRequest struct {
	Path string `json:"path"`
}

// triggerExtraction starts a detached extraction run for an uploaded
// object and acknowledges immediately. The outcome lands on the file
// record, not in this response.
func (s *Server) triggerExtraction(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}

	rec, err := s.repo.FindByPath(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no file record for path")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup file record")
		return
	}

	if err := s.pipeline.Trigger(rec.Path, rec.UserID); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyProcessing) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "trigger extraction")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"path":   rec.Path,
		"status": string(docvault.StatusProcessing),
	})
}

type fileListResponse struct {
	Files []*docvault.FileRecord `json:"files"`
	Total int                    `json:"total"`
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	files, total, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list files")
		return
	}
	if files == nil {
		files = []*docvault.FileRecord{}
	}
	writeJSON(w, http.StatusOK, fileListResponse{Files: files, Total: total})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup file record")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) getFileStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "file stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// deleteFile removes both the record and the stored object. Object
// deletion is best-effort once the record is gone.
func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "lookup file record")
		return
	}

	if err := s.repo.DeleteByPath(r.Context(), rec.Path); err != nil && !errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "delete file record")
		return
	}
	if err := s.store.Delete(r.Context(), rec.Path); err != nil {
		slog.Warn("object delete failed", "path", rec.Path, "err", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUserFiles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	files, err := s.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list files")
		return
	}
	if files == nil {
		files = []*docvault.FileRecord{}
	}
	writeJSON(w, http.StatusOK, fileListResponse{Files: files, Total: len(files)})
}

// deleteUserFiles sweeps every record and object belonging to an owner.
func (s *Server) deleteUserFiles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := s.repo.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list files")
		return
	}

	n, err := s.repo.DeleteByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete files")
		return
	}
	for _, rec := range records {
		if err := s.store.Delete(r.Context(), rec.Path); err != nil {
			slog.Warn("object delete failed", "path", rec.Path, "err", err)
		}
	}

	slog.Info("user files deleted", "user_id", userID, "count", n)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
