package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"

	"uploadapi/internal/config"
)

// fakeDrive is an in-memory stand-in for the Drive metadata API: it answers
// files.list from its folder table and records create calls.
type fakeDrive struct {
	mu          sync.Mutex
	folders     []map[string]string // id, name
	createCalls int
	lastQuery   string
	failSearch  int // if non-zero, fail list calls with this HTTP status
	failCreate  int
	srv         *httptest.Server
}

func newFakeDrive(t *testing.T) *fakeDrive {
	t.Helper()
	f := &fakeDrive{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if r.URL.Path != "/files" {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			f.lastQuery = r.URL.Query().Get("q")
			if f.failSearch != 0 {
				writeGoogleError(w, f.failSearch, "search refused")
				return
			}
			out := struct {
				Files []map[string]string `json:"files"`
			}{Files: []map[string]string{}}
			for _, folder := range f.folders {
				if strings.Contains(f.lastQuery, fmt.Sprintf("name='%s'", folder["name"])) {
					out.Files = append(out.Files, folder)
				}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			f.createCalls++
			if f.failCreate != 0 {
				writeGoogleError(w, f.failCreate, "create refused")
				return
			}
			var body struct {
				Name     string `json:"name"`
				MimeType string `json:"mimeType"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			id := fmt.Sprintf("folder-%d", len(f.folders)+1)
			f.folders = append(f.folders, map[string]string{"id": id, "name": body.Name})
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": id})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func writeGoogleError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s"}}`, status, msg)
}

func newTestStorage(apiBase, uploadBase string) Storage {
	return NewDrive(config.DriveConfig{APIBase: apiBase, UploadBase: uploadBase}, nil)
}

func TestResolveFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("existing folder found without create", func(t *testing.T) {
		backend := newFakeDrive(t)
		backend.folders = []map[string]string{{"id": "pre-existing", "name": "Иванов Иван"}}
		store := newTestStorage(backend.srv.URL, backend.srv.URL)

		id, err := store.ResolveFolder(ctx, "tok", "root-1", "Иванов Иван")
		require.NoError(t, err)
		assert.Equal(t, "pre-existing", id)
		assert.Equal(t, 0, backend.createCalls)
	})

	t.Run("missing folder created once then reused", func(t *testing.T) {
		backend := newFakeDrive(t)
		store := newTestStorage(backend.srv.URL, backend.srv.URL)

		first, err := store.ResolveFolder(ctx, "tok", "root-1", "Петров Пётр")
		require.NoError(t, err)
		require.NotEmpty(t, first)
		assert.Equal(t, 1, backend.createCalls)

		second, err := store.ResolveFolder(ctx, "tok", "root-1", "Петров Пётр")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, backend.createCalls, "second resolve must not create")
	})

	t.Run("query filters and escaping", func(t *testing.T) {
		backend := newFakeDrive(t)
		store := newTestStorage(backend.srv.URL, backend.srv.URL)

		_, err := store.ResolveFolder(ctx, "tok", "root-1", "O'Brien")
		require.NoError(t, err)

		assert.Contains(t, backend.lastQuery, `name='O\'Brien'`)
		assert.Contains(t, backend.lastQuery, "mimeType='application/vnd.google-apps.folder'")
		assert.Contains(t, backend.lastQuery, "'root-1' in parents")
		assert.Contains(t, backend.lastQuery, "trashed=false")
	})

	t.Run("search failure surfaces status and message", func(t *testing.T) {
		backend := newFakeDrive(t)
		backend.failSearch = http.StatusForbidden
		store := newTestStorage(backend.srv.URL, backend.srv.URL)

		_, err := store.ResolveFolder(ctx, "tok", "root-1", "Иванов")
		var berr *BackendError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, http.StatusForbidden, berr.StatusCode)
		assert.Contains(t, berr.Message, "search refused")
	})

	t.Run("create failure surfaces status", func(t *testing.T) {
		backend := newFakeDrive(t)
		backend.failCreate = http.StatusInternalServerError
		store := newTestStorage(backend.srv.URL, backend.srv.URL)

		_, err := store.ResolveFolder(ctx, "tok", "root-1", "Иванов")
		var berr *BackendError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, http.StatusInternalServerError, berr.StatusCode)
	})
}

func TestFirstMatch(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		id, ok := FirstMatch(nil)
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("lowest index wins under duplicates", func(t *testing.T) {
		id, ok := FirstMatch([]*drive.File{{Id: "a"}, {Id: "b"}, {Id: "c"}})
		assert.True(t, ok)
		assert.Equal(t, "a", id)
	})
}

func TestOpenUploadSession(t *testing.T) {
	ctx := context.Background()
	req := SessionRequest{
		FolderID:    "folder-9",
		FileName:    "Иванов Иван_Химия_2025-03-07_09-05-02.mp4",
		ContentType: "video/mp4",
		Size:        1024,
		Metadata:    map[string]string{"fio": "Иванов Иван", "subject": "Химия"},
	}

	t.Run("success returns session URL", func(t *testing.T) {
		var gotHeaders http.Header
		var gotBody sessionBody
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "resumable", r.URL.Query().Get("uploadType"))
			gotHeaders = r.Header.Clone()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Location", "https://upload.example.com/session/abc123")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		store := newTestStorage(srv.URL, srv.URL)

		url, err := store.OpenUploadSession(ctx, "tok-77", req)
		require.NoError(t, err)
		assert.Equal(t, "https://upload.example.com/session/abc123", url)

		assert.Equal(t, "Bearer tok-77", gotHeaders.Get("Authorization"))
		assert.Equal(t, "video/mp4", gotHeaders.Get("X-Upload-Content-Type"))
		assert.Equal(t, "1024", gotHeaders.Get("X-Upload-Content-Length"))
		assert.Contains(t, gotHeaders.Get("Content-Type"), "application/json")

		assert.Equal(t, req.FileName, gotBody.Name)
		assert.Equal(t, []string{"folder-9"}, gotBody.Parents)
		assert.Equal(t, req.Metadata, gotBody.AppProperties)
	})

	t.Run("empty content type defaults to octet-stream", func(t *testing.T) {
		var uploadType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uploadType = r.Header.Get("X-Upload-Content-Type")
			w.Header().Set("Location", "https://upload.example.com/session/x")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		store := newTestStorage(srv.URL, srv.URL)
		plain := req
		plain.ContentType = ""

		_, err := store.OpenUploadSession(ctx, "tok", plain)
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", uploadType)
	})

	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		}))
		defer srv.Close()

		store := newTestStorage(srv.URL, srv.URL)

		_, err := store.OpenUploadSession(ctx, "tok", req)
		var berr *BackendError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, http.StatusForbidden, berr.StatusCode)
		assert.Contains(t, berr.Message, "quota exceeded")
	})

	t.Run("success without Location is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		store := newTestStorage(srv.URL, srv.URL)

		_, err := store.OpenUploadSession(ctx, "tok", req)
		var berr *BackendError
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Message, "Location")
	})

	t.Run("relative Location is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", "/session/relative")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		store := newTestStorage(srv.URL, srv.URL)

		_, err := store.OpenUploadSession(ctx, "tok", req)
		var berr *BackendError
		require.ErrorAs(t, err, &berr)
		assert.Contains(t, berr.Message, "malformed")
	})
}
