package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/token"
	"github.com/HaslienFotografene/haslien-short-2/web"
)

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// PassphraseRequest is the payload of POST /auth/passphrase.
type PassphraseRequest struct {
	Passphrase string `json:"passphrase"`
	Token      string `json:"token"`
}

// Login handles POST /auth/login: verify the gate token, check the
// credentials, and answer with the next location.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" || req.Token == "" {
		SendError(w, http.StatusUnauthorized, "Missing authorization payload.")
		return
	}

	h.finishAuth(w, r, req.Token, req.Username, req.Password)
}

// Passphrase handles POST /auth/passphrase, the shared-secret variant.
func (h *Handler) Passphrase(w http.ResponseWriter, r *http.Request) {
	var req PassphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Passphrase == "" || req.Token == "" {
		SendError(w, http.StatusUnauthorized, "Missing authorization payload.")
		return
	}

	h.finishAuth(w, r, req.Token, req.Passphrase, "")
}

// finishAuth is the shared tail of both credential flows. A username rides in
// primary with its password in secondary; a passphrase rides alone in
// primary. Every rejection looks the same to the caller.
func (h *Handler) finishAuth(w http.ResponseWriter, r *http.Request, gateToken, primary, secondary string) {
	claims, err := h.issuer.Verify(gateToken)
	if err != nil {
		SendError(w, http.StatusUnauthorized, "Invalid token.")
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	authorized, err := h.resolver.Authorize(ctx, claims.Path, primary, secondary)
	if err != nil {
		log.Error().Err(err).Str("path", claims.Path).Msg("Authorization check failed")
		SendError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	if !authorized {
		SendError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	route, err := h.resolver.Resolve(ctx, claims.Path)
	if err != nil {
		log.Error().Err(err).Str("path", claims.Path).Msg("Failed to resolve path")
		SendError(w, http.StatusUnauthorized, "Invalid token.")
		return
	}
	if !route.Exists() {
		SendError(w, http.StatusGone, "URL endpoint removed.")
		return
	}

	// A login carries an identity worth keeping; tie it back to the access
	// recorded when the gate was shown.
	if secondary != "" && claims.AccessID != "" {
		if err := h.recorder.AttachUser(ctx, claims.AccessID, primary); err != nil {
			log.Warn().Err(err).Str("access_id", claims.AccessID).Msg("Failed to attach user to access log")
		}
	}

	if route.IsFramed() {
		authed, err := h.issuer.Authorize(claims, primary, secondary)
		if err != nil {
			log.Error().Err(err).Str("path", claims.Path).Msg("Failed to mint authorized token")
			SendError(w, http.StatusInternalServerError, "Failure.")
			return
		}
		SendJSON(w, http.StatusOK, RedirectResponse{Redirect: "/.frame/?token=" + authed})
		return
	}

	SendJSON(w, http.StatusOK, RedirectResponse{Redirect: route.Destination()})
}

// Frame handles GET /.frame/: render the framed destination for a token that
// already carries verified credentials. The token survives page reloads, so
// the credentials are re-checked on every render.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		h.renderError(w, "This link is missing its token", "")
		return
	}

	claims, err := h.issuer.Verify(raw)
	if err != nil {
		// Unverified decode is display-only: it names the path the dead
		// token pointed at, nothing more.
		link := ""
		if decoded := token.Decode(raw); decoded != nil && decoded.Path != "" {
			link = "/" + decoded.Path
		}
		h.renderError(w, "This link is no longer valid", link)
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	route, err := h.resolver.Resolve(ctx, claims.Path)
	if err != nil {
		log.Error().Err(err).Str("path", claims.Path).Msg("Failed to resolve path")
		SendError(w, http.StatusUnauthorized, "Failure.")
		return
	}
	if !route.Exists() {
		h.renderError(w, "This link no longer exists", "/"+claims.Path)
		return
	}

	// Gated documents re-authorize the embedded credentials; an ungated
	// framed document renders for anyone with a valid token. Either way an
	// unauthorized caller learns only that the resource is gone.
	if route.Gated() {
		authorized, err := h.resolver.Authorize(ctx, claims.Path, claims.Primary, claims.Secondary)
		if err != nil || !authorized {
			h.renderError(w, "This link no longer exists", "/"+claims.Path)
			return
		}
	}

	if err := web.Render(w, "frame.html", map[string]string{"URL": route.Destination()}); err != nil {
		log.Error().Err(err).Str("path", claims.Path).Msg("Failed to render frame view")
	}
}

func (h *Handler) renderError(w http.ResponseWriter, message, link string) {
	w.WriteHeader(http.StatusUnauthorized)
	if err := web.Render(w, "error.html", map[string]string{"Message": message, "Link": link}); err != nil {
		log.Error().Err(err).Msg("Failed to render error view")
	}
}
