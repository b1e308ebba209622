package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// QR handles GET /qr/{path}: a PNG QR code pointing at the short link.
// Size is clamped to a sane range; rendering happens only for live paths.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	ctx, cancel := h.opCtx(r)
	defer cancel()

	exists, err := h.store.PathExists(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to check path for QR")
		SendError(w, http.StatusInternalServerError, "Failed to verify URL.")
		return
	}
	if !exists {
		SendError(w, http.StatusNotFound, "Short URL does not exist.")
		return
	}

	size := 256
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil || parsed < 128 || parsed > 1024 {
			SendError(w, http.StatusBadRequest, "Size must be a number between 128 and 1024.")
			return
		}
		size = parsed
	}

	png, err := qrcode.Encode(h.baseURL+"/"+path, qrcode.Medium, size)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to generate QR code")
		SendError(w, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
	}
}
