package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/HaslienFotografene/haslien-short-2/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb)
}

func testDoc(id, path, dest string) *model.ShortURL {
	return &model.ShortURL{
		ID:          id,
		Path:        path,
		Destination: dest,
		Created:     time.Now(),
		Modified:    time.Now(),
	}
}

func TestCreateAndGetURL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("id-1", "abc", "https://example.com")
	if err := st.CreateURL(ctx, doc); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}

	got, err := st.GetURL(ctx, "abc")
	if err != nil {
		t.Fatalf("GetURL() error = %v", err)
	}
	if got.ID != "id-1" || got.Destination != "https://example.com" {
		t.Errorf("GetURL() = (%q, %q), want (id-1, https://example.com)", got.ID, got.Destination)
	}
	if got.Uses != 0 {
		t.Errorf("Uses = %d, want 0", got.Uses)
	}

	// Lookup is case-insensitive.
	if _, err := st.GetURL(ctx, "ABC"); err != nil {
		t.Errorf("GetURL(ABC) error = %v", err)
	}
}

func TestCreateURL_Conflict(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.CreateURL(ctx, testDoc("id-1", "abc", "https://example.com")); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}

	err := st.CreateURL(ctx, testDoc("id-2", "abc", "https://other.example"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateURL() error = %v, want ErrConflict", err)
	}

	// The original document is untouched.
	got, err := st.GetURL(ctx, "abc")
	if err != nil {
		t.Fatalf("GetURL() error = %v", err)
	}
	if got.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", got.ID)
	}
}

func TestGetURL_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetURL(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetURL() error = %v, want ErrNotFound", err)
	}
}

func TestPathAndDestExists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.CreateURL(ctx, testDoc("id-1", "abc", "https://example.com/page")); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}

	tests := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"path present", func() (bool, error) { return st.PathExists(ctx, "abc") }, true},
		{"path case-insensitive", func() (bool, error) { return st.PathExists(ctx, "aBc") }, true},
		{"path absent", func() (bool, error) { return st.PathExists(ctx, "nope") }, false},
		{"dest present", func() (bool, error) { return st.DestExists(ctx, "https://example.com/page") }, true},
		{"dest case-insensitive", func() (bool, error) { return st.DestExists(ctx, "HTTPS://EXAMPLE.COM/page") }, true},
		{"dest absent", func() (bool, error) { return st.DestExists(ctx, "https://other.example") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIncrementUses(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.CreateURL(ctx, testDoc("id-1", "abc", "https://example.com")); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := st.IncrementUses(ctx, "id-1"); err != nil {
			t.Fatalf("IncrementUses() error = %v", err)
		}
	}

	got, err := st.GetURL(ctx, "abc")
	if err != nil {
		t.Fatalf("GetURL() error = %v", err)
	}
	if got.Uses != 3 {
		t.Errorf("Uses = %d, want 3", got.Uses)
	}
}

func TestIncrementUses_UnknownID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Unknown and empty IDs are both silent no-ops.
	if err := st.IncrementUses(ctx, "no-such-id"); err != nil {
		t.Errorf("IncrementUses(unknown) error = %v", err)
	}
	if err := st.IncrementUses(ctx, ""); err != nil {
		t.Errorf("IncrementUses(empty) error = %v", err)
	}
}

func TestDeleteURL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.CreateURL(ctx, testDoc("id-1", "abc", "https://example.com")); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}
	if err := st.IncrementUses(ctx, "id-1"); err != nil {
		t.Fatalf("IncrementUses() error = %v", err)
	}

	deleted, err := st.DeleteURL(ctx, "abc")
	if err != nil {
		t.Fatalf("DeleteURL() error = %v", err)
	}
	if deleted.ID != "id-1" {
		t.Errorf("deleted ID = %q, want id-1", deleted.ID)
	}
	if deleted.Uses != 1 {
		t.Errorf("deleted Uses = %d, want 1", deleted.Uses)
	}

	if _, err := st.GetURL(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetURL() after delete error = %v, want ErrNotFound", err)
	}
	exists, err := st.DestExists(ctx, "https://example.com")
	if err != nil {
		t.Fatalf("DestExists() error = %v", err)
	}
	if exists {
		t.Error("destination index entry survived the delete")
	}

	docs, err := st.ListURLs(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListURLs() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListURLs() after delete = %d docs, want 0", len(docs))
	}
}

func TestDeleteURL_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.DeleteURL(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteURL() error = %v, want ErrNotFound", err)
	}
}

func TestListURLs_Pagination(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	paths := []string{"one", "two", "three", "four"}
	for i, p := range paths {
		if err := st.CreateURL(ctx, testDoc("id-"+p, p, "https://example.com/"+p)); err != nil {
			t.Fatalf("CreateURL(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name      string
		offset    int64
		limit     int64
		wantPaths []string
	}{
		{"all", 0, 10, []string{"one", "two", "three", "four"}},
		{"first two", 0, 2, []string{"one", "two"}},
		{"middle", 1, 2, []string{"two", "three"}},
		{"past end", 10, 5, []string{}},
		{"zero limit", 0, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := st.ListURLs(ctx, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("ListURLs() error = %v", err)
			}
			if len(docs) != len(tt.wantPaths) {
				t.Fatalf("ListURLs() = %d docs, want %d", len(docs), len(tt.wantPaths))
			}
			for i, want := range tt.wantPaths {
				if docs[i].Path != want {
					t.Errorf("docs[%d].Path = %q, want %q", i, docs[i].Path, want)
				}
			}
		})
	}
}

func TestLogs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entries := []*model.AccessLog{
		{ID: "log-1", Path: "abc", ShortID: "id-1", IP: "10.0.0.0"},
		{ID: "log-2", Path: "abc", ShortID: "id-1", IP: "10.0.1.0"},
		{ID: "log-3", Path: "xyz", ShortID: "id-2", IP: "10.0.2.0"},
	}
	for _, e := range entries {
		if err := st.SaveLog(ctx, e); err != nil {
			t.Fatalf("SaveLog(%s) error = %v", e.ID, err)
		}
	}

	all, err := st.ListLogs(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListLogs() = %d entries, want 3", len(all))
	}
	if all[0].ID != "log-1" || all[2].ID != "log-3" {
		t.Errorf("ListLogs() order = [%s ... %s], want [log-1 ... log-3]", all[0].ID, all[2].ID)
	}

	byPath, err := st.ListLogsByPath(ctx, "abc", 0, 10)
	if err != nil {
		t.Fatalf("ListLogsByPath() error = %v", err)
	}
	if len(byPath) != 2 {
		t.Fatalf("ListLogsByPath(abc) = %d entries, want 2", len(byPath))
	}
	for _, e := range byPath {
		if e.Path != "abc" {
			t.Errorf("entry %s has Path %q, want abc", e.ID, e.Path)
		}
	}
}

func TestAttachLogUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := &model.AccessLog{ID: "log-1", Path: "abc", ShortID: "id-1"}
	if err := st.SaveLog(ctx, entry); err != nil {
		t.Fatalf("SaveLog() error = %v", err)
	}

	if err := st.AttachLogUser(ctx, "log-1", "lars"); err != nil {
		t.Fatalf("AttachLogUser() error = %v", err)
	}

	got, err := st.GetLog(ctx, "log-1")
	if err != nil {
		t.Fatalf("GetLog() error = %v", err)
	}
	if got.User != "lars" {
		t.Errorf("User = %q, want lars", got.User)
	}

	if err := st.AttachLogUser(ctx, "missing", "lars"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AttachLogUser(missing) error = %v, want ErrNotFound", err)
	}
}
