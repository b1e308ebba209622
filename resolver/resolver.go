// Package resolver loads short URL documents, answers the access-requirement
// questions the redirect handler asks, and owns document creation and
// credential checks.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/HaslienFotografene/haslien-short-2/cache"
	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/store"
	"github.com/HaslienFotografene/haslien-short-2/token"
)

var (
	ErrMissingPath    = errors.New("resolver: missing path")
	ErrMissingPrimary = errors.New("resolver: missing primary credential")
)

// Resolver resolves paths against the store and evaluates credentials.
type Resolver struct {
	store  *store.Store
	cache  *cache.Cache
	bits   model.FlagBits
	issuer *token.Issuer
}

// New builds a resolver. docCache may be nil when caching is disabled.
func New(st *store.Store, docCache *cache.Cache, bits model.FlagBits, issuer *token.Issuer) *Resolver {
	return &Resolver{store: st, cache: docCache, bits: bits, issuer: issuer}
}

// Route is a resolved path. Doc is nil when no document matched; callers must
// check Exists before using Destination or the flag predicates.
type Route struct {
	Path string
	Doc  *model.ShortURL

	bits   model.FlagBits
	issuer *token.Issuer
}

// Resolve loads the document for a path, case-insensitive; hot paths come
// out of the in-memory cache. A missing document is not an error; the
// returned Route reports Exists() == false.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Route, error) {
	lower := strings.ToLower(path)
	route := &Route{Path: lower, bits: r.bits, issuer: r.issuer}

	if doc, found := r.cache.GetDoc(lower); found {
		route.Doc = doc
		return route, nil
	}

	doc, err := r.store.GetURL(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return route, nil
	} else if err != nil {
		return nil, err
	}

	r.cache.SetDoc(lower, *doc)
	route.Doc = doc
	return route, nil
}

// Invalidate drops a path from the document cache after a mutation.
func (r *Resolver) Invalidate(path string) {
	r.cache.Invalidate(strings.ToLower(path))
}

func (rt *Route) Exists() bool {
	return rt.Doc != nil
}

func (rt *Route) Destination() string {
	return rt.Doc.Destination
}

func (rt *Route) RequiresLogin() bool {
	return rt.Doc.Flags.Has(rt.bits.Login)
}

func (rt *Route) RequiresPassphrase() bool {
	return rt.Doc.Flags.Has(rt.bits.Passphrase)
}

func (rt *Route) IsFramed() bool {
	return rt.Doc.Flags.Has(rt.bits.Frame)
}

func (rt *Route) IsDeprecated() bool {
	return rt.Doc.Flags.Has(rt.bits.Deprecated)
}

// Gated reports whether any credential requirement applies.
func (rt *Route) Gated() bool {
	return rt.RequiresLogin() || rt.RequiresPassphrase()
}

// IssueToken signs a token for this route carrying the document's current
// flags. accessID links the token back to the access-log entry of the
// request that triggered the gate.
func (rt *Route) IssueToken(typ, accessID string) (string, error) {
	return rt.issuer.Issue(rt.Path, typ, accessID, rt.Doc.Flags)
}

// Authorize decides whether the supplied credentials currently grant access
// to the path. With a secondary credential present, primary is a username and
// secondary its password; otherwise primary is the shared passphrase,
// compared as stored plaintext. Not-authorized is (false, nil); only missing
// arguments are errors.
func (r *Resolver) Authorize(ctx context.Context, path, primary, secondary string) (bool, error) {
	if path == "" {
		return false, ErrMissingPath
	}
	if primary == "" {
		return false, ErrMissingPrimary
	}

	doc, err := r.store.GetURL(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if secondary != "" {
		for _, u := range doc.Users {
			if u.Username == primary {
				return ComparePassword(u.Password, secondary), nil
			}
		}
		return false, nil
	}

	// Passphrases are stored and compared in plaintext, unlike login
	// passwords. The asymmetry is inherited wire-format behavior; the
	// passphrase doubles as a value the operator reads back out.
	return doc.Passphrase == primary, nil
}
