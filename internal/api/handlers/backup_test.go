package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func setupBackupHandler(t *testing.T, configured bool) (*BackupHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	key := ""
	if configured {
		var k fernet.Key
		if err := k.Generate(); err != nil {
			t.Fatalf("Failed to generate key: %v", err)
		}
		key = k.Encode()
	}

	bs := testutil.NewTestBackupService(t, db, key)
	return NewBackupHandler(bs), db
}

func TestBackupHandler_Export(t *testing.T) {
	t.Run("returns token attachment", func(t *testing.T) {
		handler, db := setupBackupHandler(t, true)
		testutil.NewHolding().Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/backup/export", nil)
		w := httptest.NewRecorder()

		handler.Export(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;") {
			t.Errorf("Expected attachment disposition, got '%s'", w.Header().Get("Content-Disposition"))
		}
		if w.Body.Len() == 0 {
			t.Error("Expected token in body")
		}
	})

	t.Run("returns 503 without key", func(t *testing.T) {
		handler, _ := setupBackupHandler(t, false)

		req := httptest.NewRequest(http.MethodGet, "/api/backup/export", nil)
		w := httptest.NewRecorder()

		handler.Export(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestBackupHandler_Import(t *testing.T) {
	t.Run("restores exported token", func(t *testing.T) {
		handler, db := setupBackupHandler(t, true)
		h := testutil.NewHolding().Build(t, db)
		testutil.NewRecord(h.Code).Build(t, db)

		exportReq := httptest.NewRequest(http.MethodGet, "/api/backup/export", nil)
		exported := httptest.NewRecorder()
		handler.Export(exported, exportReq)
		if exported.Code != http.StatusOK {
			t.Fatalf("Expected export 200, got %d: %s", exported.Code, exported.Body.String())
		}

		req := httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader(exported.Body.String()+"\n"))
		w := httptest.NewRecorder()

		handler.Import(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response service.ImportSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Holdings != 1 || response.Records != 1 {
			t.Errorf("Expected 1 holding and 1 record, got %+v", response)
		}
	})

	t.Run("returns 400 for garbage token", func(t *testing.T) {
		handler, _ := setupBackupHandler(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader("not-a-token"))
		w := httptest.NewRecorder()

		handler.Import(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for empty body", func(t *testing.T) {
		handler, _ := setupBackupHandler(t, true)

		req := httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader("  "))
		w := httptest.NewRecorder()

		handler.Import(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 503 without key", func(t *testing.T) {
		handler, _ := setupBackupHandler(t, false)

		req := httptest.NewRequest(http.MethodPost, "/api/backup/import", strings.NewReader("token"))
		w := httptest.NewRecorder()

		handler.Import(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}
