package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/store"
)

// Default page sizes per listing, matching historical behavior.
const (
	defaultURLLimit     = 1000
	defaultLogLimit     = 100
	defaultPathLogLimit = 50
)

var errInvalidNumber = errors.New("Invalid number.")

// pagination reads limit/offset query parameters with a per-route default.
func pagination(r *http.Request, defaultLimit int64) (limit, offset int64, err error) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return 0, 0, errInvalidNumber
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || offset < 0 {
			return 0, 0, errInvalidNumber
		}
	}
	return limit, offset, nil
}

// List handles GET /list: all documents, paginated, redacted.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r, defaultURLLimit)
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	docs, err := h.store.ListURLs(ctx, offset, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list documents")
		SendError(w, http.StatusInternalServerError, "Failed to list URLs.")
		return
	}

	redacted := make([]model.ShortURL, len(docs))
	for i, doc := range docs {
		redacted[i] = doc.Redacted()
	}
	SendData(w, http.StatusOK, "", redacted)
}

// ListLogs handles GET /list/logs: all access-log entries, paginated.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r, defaultLogLimit)
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	entries, err := h.store.ListLogs(ctx, offset, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list access logs")
		SendError(w, http.StatusInternalServerError, "Failed to list logs.")
		return
	}
	SendData(w, http.StatusOK, "", entries)
}

// ListPath handles GET /list/{path}: one document in full (redacted).
func (h *Handler) ListPath(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	ctx, cancel := h.opCtx(r)
	defer cancel()

	doc, err := h.store.GetURL(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		SendData(w, http.StatusNotFound, "", nil)
		return
	} else if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to load document")
		SendError(w, http.StatusInternalServerError, "Failed to load URL.")
		return
	}

	SendData(w, http.StatusOK, "", doc.Redacted())
}

// ListPathLogs handles GET /list/logs/{path}: entries for one path.
func (h *Handler) ListPathLogs(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	limit, offset, err := pagination(r, defaultPathLogLimit)
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	exists, err := h.store.PathExists(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to check path")
		SendError(w, http.StatusInternalServerError, "Failed to list logs.")
		return
	}
	if !exists {
		SendError(w, http.StatusNotFound, fmt.Sprintf("Url '%s' does not exist", path))
		return
	}

	entries, err := h.store.ListLogsByPath(ctx, path, offset, limit)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to list access logs")
		SendError(w, http.StatusInternalServerError, "Failed to list logs.")
		return
	}
	SendData(w, http.StatusOK, "", entries)
}

// ExistDest handles GET /list/exist?dest=: bare status-code probe for a
// destination.
func (h *Handler) ExistDest(w http.ResponseWriter, r *http.Request) {
	dest := r.URL.Query().Get("dest")
	if dest == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	exists, err := h.store.DestExists(ctx, dest)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check destination")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ExistPath handles GET /list/exist/{path}: bare status-code probe for a
// short path.
func (h *Handler) ExistPath(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	ctx, cancel := h.opCtx(r)
	defer cancel()

	exists, err := h.store.PathExists(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to check path")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
