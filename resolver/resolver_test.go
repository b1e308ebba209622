package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/store"
	"github.com/HaslienFotografene/haslien-short-2/token"
)

var testBits = model.FlagBits{Deprecated: 1, Passphrase: 2, Login: 4, Frame: 8}

func newTestResolver(t *testing.T) (*Resolver, *store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	secret, err := token.NewSecret()
	if err != nil {
		t.Fatalf("NewSecret() error = %v", err)
	}
	st := store.New(rdb)
	return New(st, nil, testBits, token.NewIssuer(secret)), st
}

func mustCreate(t *testing.T, r *Resolver, st *store.Store, req model.CreateRequest) *model.ShortURL {
	t.Helper()
	doc, err := r.NewDocument(req)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if err := st.CreateURL(context.Background(), doc); err != nil {
		t.Fatalf("CreateURL() error = %v", err)
	}
	return doc
}

func TestNewDocument_Validation(t *testing.T) {
	r, _ := newTestResolver(t)

	valid := model.CreateRequest{Path: "abc", Destination: "https://example.com"}

	tests := []struct {
		name    string
		mutate  func(*model.CreateRequest)
		wantErr error
	}{
		{"missing path", func(r *model.CreateRequest) { r.Path = "" }, ErrPathRequired},
		{"path too long", func(r *model.CreateRequest) { r.Path = strings.Repeat("a", 101) }, ErrPathTooLong},
		{"path bad charset", func(r *model.CreateRequest) { r.Path = "a/b" }, ErrPathInvalid},
		{"path with space", func(r *model.CreateRequest) { r.Path = "a b" }, ErrPathInvalid},
		{"missing dest", func(r *model.CreateRequest) { r.Destination = "" }, ErrDestRequired},
		{"desc too long", func(r *model.CreateRequest) { r.Description = strings.Repeat("d", 401) }, ErrDescTooLong},
		{"passphrase too long", func(r *model.CreateRequest) { r.Passphrase = strings.Repeat("p", 101) }, ErrPassphraseTooLong},
		{
			"user missing password",
			func(r *model.CreateRequest) { r.User = &model.CreateUserRequest{Username: "lars"} },
			ErrUserIncomplete,
		},
		{
			"user missing username",
			func(r *model.CreateRequest) { r.User = &model.CreateUserRequest{Password: "pw"} },
			ErrUserIncomplete,
		},
		{
			"user negative flags",
			func(r *model.CreateRequest) {
				r.User = &model.CreateUserRequest{Username: "lars", Password: "pw", Flags: -1}
			},
			ErrUserFlagsNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := r.NewDocument(req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDocument_Flags(t *testing.T) {
	r, _ := newTestResolver(t)

	user := &model.CreateUserRequest{Username: "lars", Password: "pw"}

	tests := []struct {
		name string
		req  model.CreateRequest
		want model.Flags
	}{
		{"plain", model.CreateRequest{Path: "a", Destination: "https://x.example"}, 0},
		{"passphrase", model.CreateRequest{Path: "a", Destination: "https://x.example", Passphrase: "s"}, 2},
		{"login only", model.CreateRequest{Path: "a", Destination: "https://x.example", User: user}, 4},
		{"frame", model.CreateRequest{Path: "a", Destination: "https://x.example", Frame: true}, 8},
		{
			"login framed",
			model.CreateRequest{Path: "a", Destination: "https://x.example", User: user, Frame: true},
			12,
		},
		{
			"everything",
			model.CreateRequest{Path: "a", Destination: "https://x.example", Passphrase: "s", User: user, Frame: true},
			14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := r.NewDocument(tt.req)
			if err != nil {
				t.Fatalf("NewDocument() error = %v", err)
			}
			if doc.Flags != tt.want {
				t.Errorf("Flags = %d, want %d", doc.Flags, tt.want)
			}
		})
	}
}

func TestNewDocument_Normalization(t *testing.T) {
	r, _ := newTestResolver(t)

	doc, err := r.NewDocument(model.CreateRequest{
		Path:        "MyPath",
		Destination: "https://example.com",
		User:        &model.CreateUserRequest{Username: "lars", Password: "hunter2"},
	})
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}

	if doc.Path != "mypath" {
		t.Errorf("Path = %q, want lowercased %q", doc.Path, "mypath")
	}
	if doc.ID == "" || doc.Users[0].ID == "" {
		t.Error("document or user missing generated ID")
	}
	if doc.Uses != 0 {
		t.Errorf("Uses = %d, want 0", doc.Uses)
	}
	if doc.Users[0].Password == "hunter2" {
		t.Error("user password stored in plaintext")
	}
	if !ComparePassword(doc.Users[0].Password, "hunter2") {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestRedacted(t *testing.T) {
	doc := model.ShortURL{
		ID:         "id-1",
		Path:       "abc",
		Passphrase: "open-sesame",
		Users: []model.User{
			{ID: "u-1", Username: "lars", Password: "$2a$10$hash", Flags: 3},
		},
	}

	red := doc.Redacted()
	if red.Users[0].Password != "" || red.Users[0].ID != "" {
		t.Errorf("Redacted() kept user secrets: %+v", red.Users[0])
	}
	if red.Users[0].Username != "lars" || red.Users[0].Flags != 3 {
		t.Errorf("Redacted() dropped non-secret user fields: %+v", red.Users[0])
	}

	// The original is untouched.
	if doc.Users[0].Password == "" {
		t.Error("Redacted() mutated the source document")
	}
}

func TestResolve(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	mustCreate(t, r, st, model.CreateRequest{Path: "abc", Destination: "https://example.com", Frame: true})

	route, err := r.Resolve(ctx, "ABC")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !route.Exists() {
		t.Fatal("Resolve() route does not exist")
	}
	if route.Destination() != "https://example.com" {
		t.Errorf("Destination() = %q", route.Destination())
	}
	if !route.IsFramed() || route.Gated() || route.IsDeprecated() {
		t.Errorf("flag predicates = framed:%v gated:%v deprecated:%v, want true/false/false",
			route.IsFramed(), route.Gated(), route.IsDeprecated())
	}

	missing, err := r.Resolve(ctx, "nope")
	if err != nil {
		t.Fatalf("Resolve(missing) error = %v", err)
	}
	if missing.Exists() {
		t.Error("Resolve(missing) route exists")
	}
}

func TestAuthorize_Passphrase(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	mustCreate(t, r, st, model.CreateRequest{
		Path:        "gated",
		Destination: "https://example.com",
		Passphrase:  "open-sesame",
	})

	tests := []struct {
		name    string
		path    string
		primary string
		want    bool
		wantErr error
	}{
		{"correct", "gated", "open-sesame", true, nil},
		{"wrong", "gated", "wrong", false, nil},
		{"unknown path", "nope", "open-sesame", false, nil},
		{"missing path", "", "open-sesame", false, ErrMissingPath},
		{"missing primary", "gated", "", false, ErrMissingPrimary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Authorize(ctx, tt.path, tt.primary, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorize_Login(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	mustCreate(t, r, st, model.CreateRequest{
		Path:        "members",
		Destination: "https://example.com",
		User:        &model.CreateUserRequest{Username: "lars", Password: "hunter2"},
	})

	tests := []struct {
		name      string
		primary   string
		secondary string
		want      bool
	}{
		{"correct", "lars", "hunter2", true},
		{"wrong password", "lars", "wrong", false},
		{"unknown user", "eve", "hunter2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Authorize(ctx, "members", tt.primary, tt.secondary)
			if err != nil {
				t.Fatalf("Authorize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Authorize(%q, %q) = %v, want %v", tt.primary, tt.secondary, got, tt.want)
			}
		})
	}
}

func TestComparePassword_MalformedHash(t *testing.T) {
	if ComparePassword("not-a-bcrypt-hash", "anything") {
		t.Error("ComparePassword() accepted a malformed hash")
	}
	if ComparePassword("", "anything") {
		t.Error("ComparePassword() accepted an empty hash")
	}
}
