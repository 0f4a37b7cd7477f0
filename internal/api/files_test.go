package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seonho/docvault/internal/api"
	"github.com/seonho/docvault/internal/docvault"
	"github.com/seonho/docvault/internal/extract"
	"github.com/seonho/docvault/internal/pipeline"
	"github.com/seonho/docvault/internal/repository"
	"github.com/seonho/docvault/internal/storage"
	"github.com/seonho/docvault/internal/summarize"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string]storage.Object
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string]storage.Object{}}
}

func (m *memStorage) Upload(_ context.Context, path, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = storage.Object{Data: data, ContentType: contentType}
	return nil
}

func (m *memStorage) Download(_ context.Context, path string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", path, storage.ErrNotFound)
	}
	return &obj, nil
}

func (m *memStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) List(_ context.Context, _ string) ([]string, error) { return nil, nil }

func newTestServer() (*memStorage, repository.FileRepository, http.Handler) {
	store := newMemStorage()
	repo := repository.NewMemoryFileRepository()
	pl := pipeline.New(store, repo, extract.New(nil), summarize.New(nil, ""))
	return store, repo, api.NewServer(store, repo, pl).Handler()
}

func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadCSV(t *testing.T, handler http.Handler, userID, filename, content string) docvault.FileRecord {
	t.Helper()
	body, ctype := multipartBody(t, filename, "text/csv", content)
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("X-User-ID", userID)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var rec docvault.FileRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestUploadFile(t *testing.T) {
	store, repo, handler := newTestServer()

	rec := uploadCSV(t, handler, "user-1", "doc.csv", "a,b\n1,2")

	if rec.Status != docvault.StatusPending {
		t.Errorf("status = %q, want pending", rec.Status)
	}
	if rec.UserID != "user-1" {
		t.Errorf("userID = %q", rec.UserID)
	}
	if rec.OriginalName != "doc.csv" {
		t.Errorf("originalName = %q", rec.OriginalName)
	}
	if !strings.HasPrefix(rec.Path, "user-1/") || !strings.HasSuffix(rec.Path, "/doc.csv") {
		t.Errorf("path = %q", rec.Path)
	}

	if _, err := store.Download(context.Background(), rec.Path); err != nil {
		t.Errorf("object not stored: %v", err)
	}
	if _, err := repo.FindByPath(context.Background(), rec.Path); err != nil {
		t.Errorf("record not stored: %v", err)
	}
}

func TestUploadFileMissingUserHeader(t *testing.T) {
	_, _, handler := newTestServer()

	body, ctype := multipartBody(t, "doc.csv", "text/csv", "a,b")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadFileMissingFileField(t *testing.T) {
	_, _, handler := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestTriggerExtraction(t *testing.T) {
	_, repo, handler := newTestServer()
	rec := uploadCSV(t, handler, "user-1", "doc.csv", "a,b\n1,2")

	payload := fmt.Sprintf(`{"path": %q}`, rec.Path)
	req := httptest.NewRequest(http.MethodPost, "/api/files/extract", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	// The run is detached; poll for its terminal state.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := repo.FindByPath(context.Background(), rec.Path)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status == docvault.StatusCompleted {
			if got.ExtractedData == nil || *got.ExtractedData != "a,b\n1,2" {
				t.Errorf("extractedData = %v", got.ExtractedData)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never completed, status = %q", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTriggerExtractionUnknownPath(t *testing.T) {
	_, _, handler := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/files/extract", strings.NewReader(`{"path": "nope"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestTriggerExtractionMissingPath(t *testing.T) {
	_, _, handler := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/files/extract", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetFile(t *testing.T) {
	_, _, handler := newTestServer()
	rec := uploadCSV(t, handler, "user-1", "doc.csv", "a,b")

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+rec.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got docvault.FileRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID {
		t.Errorf("id = %q, want %q", got.ID, rec.ID)
	}
}

func TestGetFileNotFound(t *testing.T) {
	_, _, handler := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/files/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestListFiles(t *testing.T) {
	_, _, handler := newTestServer()
	uploadCSV(t, handler, "user-1", "a.csv", "a")
	uploadCSV(t, handler, "user-2", "b.csv", "b")

	req := httptest.NewRequest(http.MethodGet, "/api/files?limit=1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Files []docvault.FileRecord `json:"files"`
		Total int                   `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
	if len(resp.Files) != 1 {
		t.Errorf("len(files) = %d, want 1", len(resp.Files))
	}
}

func TestFileStats(t *testing.T) {
	_, _, handler := newTestServer()
	uploadCSV(t, handler, "user-1", "a.csv", "a")

	req := httptest.NewRequest(http.MethodGet, "/api/files/stats", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var stats docvault.FileStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 1 {
		t.Errorf("total = %d, want 1", stats.Total)
	}
	if stats.ByStatus[docvault.StatusPending] != 1 {
		t.Errorf("byStatus = %v", stats.ByStatus)
	}
}

func TestDeleteFile(t *testing.T) {
	store, repo, handler := newTestServer()
	rec := uploadCSV(t, handler, "user-1", "doc.csv", "a,b")

	req := httptest.NewRequest(http.MethodDelete, "/api/files/"+rec.ID, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if _, err := repo.FindByPath(context.Background(), rec.Path); err == nil {
		t.Error("record should be deleted")
	}
	if _, err := store.Download(context.Background(), rec.Path); err == nil {
		t.Error("object should be deleted")
	}
}

func TestDeleteUserFiles(t *testing.T) {
	store, repo, handler := newTestServer()
	a := uploadCSV(t, handler, "user-1", "a.csv", "a")
	uploadCSV(t, handler, "user-1", "b.csv", "b")
	other := uploadCSV(t, handler, "user-2", "c.csv", "c")

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-1/files", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["deleted"] != 2 {
		t.Errorf("deleted = %d, want 2", resp["deleted"])
	}

	if _, err := repo.FindByPath(context.Background(), a.Path); err == nil {
		t.Error("user-1 record should be deleted")
	}
	if _, err := store.Download(context.Background(), a.Path); err == nil {
		t.Error("user-1 object should be deleted")
	}
	if _, err := repo.FindByPath(context.Background(), other.Path); err != nil {
		t.Error("user-2 record should survive")
	}
}

func TestListUserFiles(t *testing.T) {
	_, _, handler := newTestServer()
	uploadCSV(t, handler, "user-1", "a.csv", "a")
	uploadCSV(t, handler, "user-2", "b.csv", "b")

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/files", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Files []docvault.FileRecord `json:"files"`
		Total int                   `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Files) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Files[0].UserID != "user-1" {
		t.Errorf("userID = %q", resp.Files[0].UserID)
	}
}
