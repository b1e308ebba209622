// Package stats records access statistics: one anonymized log entry per
// inbound request plus a usage counter per document.
package stats

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/geo"
	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/store"
)

// Hit describes one inbound request to record.
type Hit struct {
	IP          string
	Path        string
	Destination string
	UserAgent   string
	Origin      string
	Query       url.Values
	NotFound    bool
	ShortID     string // document ID, or model.RootShortID for the root
}

// Recorder writes access-log entries and maintains usage counters.
type Recorder struct {
	store *store.Store
	geo   *geo.Client
}

func NewRecorder(st *store.Store, geoClient *geo.Client) *Recorder {
	return &Recorder{store: st, geo: geoClient}
}

// RecordHit anonymizes the IP, optionally enriches with a best-effort
// geolocation lookup, and persists the entry. The returned entry carries the
// ID callers embed in gate tokens.
func (r *Recorder) RecordHit(ctx context.Context, hit Hit) (*model.AccessLog, error) {
	shortID := hit.ShortID
	if shortID == "" {
		shortID = model.RootShortID
	}

	ip := AnonymizeIP(hit.IP)

	entry := &model.AccessLog{
		ID:           uuid.New().String(),
		Path:         hit.Path,
		Destination:  hit.Destination,
		Origin:       hit.Origin,
		IP:           ip,
		NotFound:     hit.NotFound,
		QueryStrings: QueryList(hit.Query),
		UserAgent:    hit.UserAgent,
		ShortID:      shortID,
		Location:     r.geo.Lookup(ctx, ip),
		LoggedAt:     time.Now(),
	}

	if err := r.store.SaveLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// IncrementUsage bumps the document's usage counter. Unknown IDs no-op.
func (r *Recorder) IncrementUsage(ctx context.Context, docID string) error {
	return r.store.IncrementUses(ctx, docID)
}

// AttachUser records the authenticated username on an earlier log entry.
func (r *Recorder) AttachUser(ctx context.Context, logID, username string) error {
	return r.store.AttachLogUser(ctx, logID, username)
}

// AnonymizeIP strips the host-identifying tail of an address: the last octet
// of an IPv4, the last hextet of an IPv6. Anything unparseable passes through
// unchanged.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}

	if v4 := parsed.To4(); v4 != nil {
		v4[3] = 0
		return v4.String()
	}

	v6 := parsed.To16()
	v6[14] = 0
	v6[15] = 0
	return v6.String()
}

// QueryList unwraps query parameters into an ordered list of single-key
// records, nil when there are none. Keys are sorted so the stored shape is
// deterministic.
func QueryList(values url.Values) []map[string]string {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, map[string]string{k: values.Get(k)})
	}
	return list
}

// ClientIP extracts the caller's address from a request, preferring the
// proxy-supplied header the way the service is deployed behind one.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the client when multiple proxies are chained.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LogFailure logs a recording error without failing the request; statistics
// are never worth a failed redirect.
func LogFailure(err error, path string) {
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to record access")
	}
}
