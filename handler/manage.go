package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/model"
	"github.com/HaslienFotografene/haslien-short-2/store"
)

// Create handles POST /new: validate, insert, return the redacted document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, http.StatusBadRequest, "Invalid body/payload")
		return
	}

	doc, err := h.resolver.NewDocument(req)
	if err != nil {
		SendError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	if err := h.store.CreateURL(ctx, doc); err != nil {
		if errors.Is(err, store.ErrConflict) {
			SendError(w, http.StatusConflict, "This path is already taken.")
			return
		}
		log.Error().Err(err).Str("path", doc.Path).Msg("Failed to store document")
		SendError(w, http.StatusInternalServerError, "Failed to store URL.")
		return
	}

	log.Info().
		Str("path", doc.Path).
		Str("dest", doc.Destination).
		Int64("flags", int64(doc.Flags)).
		Msg("Short URL created")

	SendData(w, http.StatusCreated, "Success.", doc.Redacted())
}

// Delete handles DELETE /{path}: permanent removal, returns what was
// deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	ctx, cancel := h.opCtx(r)
	defer cancel()

	doc, err := h.store.DeleteURL(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		SendError(w, http.StatusNotFound, fmt.Sprintf("No short URL '%s' exist", path))
		return
	} else if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to delete document")
		SendError(w, http.StatusInternalServerError, "Failed to delete URL.")
		return
	}

	h.resolver.Invalidate(path)

	log.Info().Str("path", doc.Path).Msg("Short URL deleted")
	SendData(w, http.StatusOK, fmt.Sprintf("URL '%s' deleted", path), doc.Redacted())
}
