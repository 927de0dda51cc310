package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storefleet/importer/internal/config"
	"github.com/storefleet/importer/internal/core"
	"github.com/storefleet/importer/internal/decode"
	"github.com/storefleet/importer/internal/language"
)

// fakeStore is a minimal core.Storage for handler tests. All writes land in
// counters; the handler tests only care about HTTP behavior, not persistence
// semantics, which the core package covers.
type fakeStore struct {
	accounts map[string]*core.Account
	stores   int64
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*core.Account)}
}

func (f *fakeStore) Begin(ctx context.Context) (core.Unit, error) { return &fakeUnit{f}, nil }

func (f *fakeStore) TableCounts(ctx context.Context) (core.Snapshot, error) {
	return core.Snapshot{"stores": f.stores}, nil
}

func (f *fakeStore) ZoneExists(ctx context.Context, id int64) (bool, error) { return true, nil }

func (f *fakeStore) ModuleExists(ctx context.Context, id int64) (bool, error) { return true, nil }

type fakeUnit struct{ f *fakeStore }

func (u *fakeUnit) FindAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return u.f.accounts[email], nil
}

func (u *fakeUnit) InsertAccount(ctx context.Context, a *core.Account) (int64, error) {
	u.f.nextID++
	a.ID = u.f.nextID
	u.f.accounts[a.Email] = a
	return a.ID, nil
}

func (u *fakeUnit) StoreExistsForEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (u *fakeUnit) InsertStore(ctx context.Context, s *core.Store) (int64, error) {
	u.f.nextID++
	u.f.stores++
	return u.f.nextID, nil
}

func (u *fakeUnit) InsertStoreConfig(ctx context.Context, c *core.StoreConfig) error { return nil }

func (u *fakeUnit) ReplaceTranslations(ctx context.Context, kind core.EntityKind, entityID int64, tuples []core.Tuple) error {
	return nil
}

func (u *fakeUnit) Savepoint(ctx context.Context, name string) error { return nil }

func (u *fakeUnit) ReleaseSavepoint(ctx context.Context, name string) error { return nil }

func (u *fakeUnit) RollbackToSavepoint(ctx context.Context, name string) error { return nil }

func (u *fakeUnit) Commit(ctx context.Context) error { return nil }

func (u *fakeUnit) Rollback(ctx context.Context) error { return nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Import.ChunkSize = 100
	cfg.Import.DefaultZoneID = 1
	cfg.Import.Timeout = 60 * time.Second

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := core.New(newFakeStore(), decode.New(), language.Default(), logger, core.Options{
		DefaultZoneID: cfg.Import.DefaultZoneID,
		ChunkSize:     cfg.Import.ChunkSize,
	})
	return NewServer(pipeline, cfg)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleImportSuccess(t *testing.T) {
	srv := testServer(t)
	csv := "first_name,last_name,email,phone,store_name,name_ar\n" +
		"Ari,Karim,ari@example.com,0750123,Ari's Grill,مشواة آري\n"

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "stores.csv", csv))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result core.ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.State != core.StateCompleted || result.Imported != 1 {
		t.Errorf("state = %s, imported = %d, want completed/1", result.State, result.Imported)
	}
	if result.ImportID == "" {
		t.Error("response carries no import id")
	}
}

func TestHandleImportRejection(t *testing.T) {
	srv := testServer(t)
	csv := "first_name,store_name\nAri,Ari's Grill\n"

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "stores.csv", csv))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
	}

	var result core.ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.State != core.StateRejected || len(result.Errors) == 0 {
		t.Errorf("state = %s, errors = %v, want rejected with reasons", result.State, result.Errors)
	}
}

func TestHandleImportNoFile(t *testing.T) {
	srv := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "missing the file field")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code == "" {
		t.Error("error response carries no support code")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
