package handler

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/resolver"
	"github.com/HaslienFotografene/haslien-short-2/stats"
	"github.com/HaslienFotografene/haslien-short-2/token"
	"github.com/HaslienFotografene/haslien-short-2/web"
)

var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Root handles GET /: record the hit, send the visitor to the default
// destination.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opCtx(r)
	defer cancel()

	_, err := h.recorder.RecordHit(ctx, stats.Hit{
		IP:        stats.ClientIP(r),
		Path:      "/",
		UserAgent: r.UserAgent(),
		Origin:    r.Referer(),
		Query:     r.URL.Query(),
		ShortID:   model.RootShortID,
	})
	stats.LogFailure(err, "/")

	http.Redirect(w, r, h.config.DefaultRedirect, http.StatusFound)
}

// Redirect handles GET /{path}: resolve the document and either redirect,
// render a credential-entry view, or render the framed destination, per the
// document's flags. Every attempt is counted and logged.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	if path == "favicon.ico" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Short paths are a closed character set and never carry query
	// parameters; anything else is rejected outright.
	if !pathPattern.MatchString(path) || len(r.URL.Query()) > 0 {
		SendError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	route, err := h.resolver.Resolve(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to resolve path")
		SendError(w, http.StatusInternalServerError, "Failure.")
		return
	}

	docID := ""
	dest := ""
	if route.Exists() {
		docID = route.Doc.ID
		dest = route.Destination()
	}

	if err := h.recorder.IncrementUsage(ctx, docID); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to increment usage")
	}
	entry, err := h.recorder.RecordHit(ctx, stats.Hit{
		IP:          stats.ClientIP(r),
		Path:        route.Path,
		Destination: dest,
		UserAgent:   r.UserAgent(),
		Origin:      r.Referer(),
		NotFound:    !route.Exists(),
		ShortID:     docID,
	})
	stats.LogFailure(err, path)

	if !route.Exists() {
		http.Redirect(w, r, h.config.DefaultRedirect, http.StatusFound)
		return
	}

	accessID := ""
	if entry != nil {
		accessID = entry.ID
	}

	switch {
	case route.RequiresLogin():
		h.renderGate(w, route.Path, token.TypeLogin, accessID, "login.html", route)
	case route.RequiresPassphrase():
		h.renderGate(w, route.Path, token.TypePassword, accessID, "password.html", route)
	case route.IsFramed():
		// The framed render carries its own token so the view can re-enter
		// through /.frame/ on reload without another resolve.
		frameToken, err := route.IssueToken(token.TypeFrame, accessID)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to issue frame token")
			SendError(w, http.StatusInternalServerError, "Failure.")
			return
		}
		if err := web.Render(w, "frame.html", map[string]string{
			"URL":   route.Destination(),
			"Token": frameToken,
		}); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to render frame view")
		}
	default:
		http.Redirect(w, r, route.Destination(), http.StatusFound)
	}
}

// renderGate issues a gate token and renders the credential-entry view.
func (h *Handler) renderGate(w http.ResponseWriter, path, typ, accessID, view string, route *resolver.Route) {
	gateToken, err := route.IssueToken(typ, accessID)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to issue gate token")
		SendError(w, http.StatusInternalServerError, "Failure.")
		return
	}
	if err := web.Render(w, view, map[string]string{"Token": gateToken}); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to render gate view")
	}
}
