package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"slack-file-cleaner/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *SlackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSlackClient(srv.URL, "xoxp-test")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestSlackClient_ListFiles(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files.list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer xoxp-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("token") != "xoxp-test" {
			t.Errorf("token = %q", r.PostForm.Get("token"))
		}
		if r.PostForm.Get("count") != "100" {
			t.Errorf("count = %q", r.PostForm.Get("count"))
		}
		if r.PostForm.Get("page") != "2" {
			t.Errorf("page = %q", r.PostForm.Get("page"))
		}
		if r.PostForm.Get("ts_to") != "1700000000" {
			t.Errorf("ts_to = %q", r.PostForm.Get("ts_to"))
		}
		writeJSON(w, map[string]any{
			"ok": true,
			"files": []map[string]any{
				{"id": "F1", "name": "a.png", "filetype": "png", "size": 2048, "timestamp": 1600000000},
				{"id": "F2", "name": "b.mp3", "filetype": "mp3", "size": 10, "timestamp": 1600000001},
			},
			"paging": map[string]any{"count": 100, "total": 102, "page": 2, "pages": 2},
		})
	})

	tsTo := int64(1700000000)
	page, err := client.ListFiles(context.Background(), 2, &tsTo)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(page.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(page.Files))
	}
	if f := page.Files[0]; f.ID != "F1" || f.Name != "a.png" || f.Filetype != "png" || f.Size != 2048 || f.Timestamp != 1600000000 {
		t.Fatalf("unexpected file %+v", f)
	}
	if page.Cursor.Page != 2 || page.Cursor.Pages != 2 || !page.Cursor.IsFinal() {
		t.Fatalf("unexpected cursor %+v", page.Cursor)
	}
}

func TestSlackClient_ListFiles_OmitsTsToWithoutAgeFilter(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if _, ok := r.PostForm["ts_to"]; ok {
			t.Errorf("ts_to should not be sent")
		}
		writeJSON(w, map[string]any{"ok": true, "paging": map[string]any{"page": 1, "pages": 1}})
	})

	if _, err := client.ListFiles(context.Background(), 1, nil); err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
}

func TestSlackClient_ListFiles_SendsZeroTsTo(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got, ok := r.PostForm["ts_to"]; !ok || got[0] != "0" {
			t.Errorf("ts_to = %v; want 0", got)
		}
		writeJSON(w, map[string]any{"ok": true, "paging": map[string]any{"page": 1, "pages": 0}})
	})

	var tsTo int64
	if _, err := client.ListFiles(context.Background(), 1, &tsTo); err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
}

func TestSlackClient_ListFiles_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"invalid auth", http.StatusOK, `{"ok":false,"error":"invalid_auth"}`, ErrAuth},
		{"not authed", http.StatusOK, `{"ok":false,"error":"not_authed"}`, ErrAuth},
		{"unauthorized status", http.StatusUnauthorized, `{}`, ErrAuth},
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport},
		{"rate limited", http.StatusTooManyRequests, `{"ok":false,"error":"ratelimited"}`, ErrTransport},
		{"garbage body", http.StatusOK, `not json`, ErrTransport},
		{"other api error", http.StatusOK, `{"ok":false,"error":"missing_scope"}`, ErrAPI},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			})
			_, err := client.ListFiles(context.Background(), 1, nil)
			if !errors.Is(err, c.want) {
				t.Fatalf("error = %v; want %v", err, c.want)
			}
		})
	}
}

func TestSlackClient_ListFiles_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewSlackClient(url, "xoxp-test")
	if _, err := client.ListFiles(context.Background(), 1, nil); !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v; want ErrTransport", err)
	}
}

func TestSlackClient_DeleteFile(t *testing.T) {
	var deleted []string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files.delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		id := r.PostForm.Get("file")
		deleted = append(deleted, id)
		if id == "missing" {
			writeJSON(w, map[string]any{"ok": false, "error": "file_not_found"})
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	})

	if err := client.DeleteFile(context.Background(), "F1"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := client.DeleteFile(context.Background(), "missing"); !errors.Is(err, ErrAPI) {
		t.Fatalf("error = %v; want ErrAPI", err)
	}
	if len(deleted) != 2 || deleted[0] != "F1" {
		t.Fatalf("unexpected delete requests %v", deleted)
	}
}

func TestSlackClient_Authenticate(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth.test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "Bearer xoxp-test" {
			writeJSON(w, map[string]any{"ok": true})
			return
		}
		writeJSON(w, map[string]any{"ok": false, "error": "invalid_auth"})
	})

	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	client.client.SetAuthToken("bad")
	if err := client.Authenticate(context.Background()); !errors.Is(err, ErrAuth) {
		t.Fatalf("error = %v; want ErrAuth", err)
	}
}

// stubLister serves pre-built pages and records requested page numbers
type stubLister struct {
	sizes     []int
	pages     int
	failOn    int
	requested []int
}

func (s *stubLister) ListFiles(ctx context.Context, page int, tsTo *int64) (models.FilesPage, error) {
	s.requested = append(s.requested, page)
	if page == s.failOn {
		return models.FilesPage{}, ErrTransport
	}
	var files []models.FileRecord
	if page <= len(s.sizes) {
		for i := 0; i < s.sizes[page-1]; i++ {
			files = append(files, models.FileRecord{ID: "F" + strconv.Itoa(page) + "-" + strconv.Itoa(i)})
		}
	}
	return models.FilesPage{Files: files, Cursor: models.PageCursor{Page: page, Pages: s.pages}}, nil
}

func TestFilePager_WalksAllPages(t *testing.T) {
	lister := &stubLister{sizes: []int{100, 100, 50}, pages: 3}
	pager := NewFilePager(lister, nil)

	total := 0
	for pager.HasNext() {
		page, err := pager.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		total += len(page.Files)
	}

	if total != 250 {
		t.Fatalf("got %d files, want 250", total)
	}
	if len(lister.requested) != 3 || lister.requested[0] != 1 || lister.requested[2] != 3 {
		t.Fatalf("requested pages %v", lister.requested)
	}
	if _, err := pager.Next(context.Background()); !errors.Is(err, ErrNoMorePages) {
		t.Fatalf("error = %v; want ErrNoMorePages", err)
	}
}

func TestFilePager_StopsOnFailure(t *testing.T) {
	lister := &stubLister{sizes: []int{100, 100, 50}, pages: 3, failOn: 2}
	pager := NewFilePager(lister, nil)

	if _, err := pager.Next(context.Background()); err != nil {
		t.Fatalf("first page: %v", err)
	}
	if _, err := pager.Next(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v; want ErrTransport", err)
	}
	if pager.HasNext() {
		t.Fatal("pager should stop after a failed page")
	}
}

func TestFilePager_ZeroPages(t *testing.T) {
	tsTo := int64(1700000000)
	pager := NewFilePager(&stubLister{pages: 0}, &tsTo)
	if _, err := pager.Next(context.Background()); !errors.Is(err, ErrNoResults) {
		t.Fatalf("error = %v; want ErrNoResults", err)
	}

	var epoch int64
	pager = NewFilePager(&stubLister{pages: 0}, &epoch)
	if _, err := pager.Next(context.Background()); !errors.Is(err, ErrNoResults) {
		t.Fatalf("error = %v; want ErrNoResults for a zero bound", err)
	}

	pager = NewFilePager(&stubLister{pages: 0}, nil)
	page, err := pager.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(page.Files) != 0 || pager.HasNext() {
		t.Fatalf("expected a single empty page, got %+v", page)
	}
}
