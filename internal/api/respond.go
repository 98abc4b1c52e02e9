package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"studiosim/internal/game"
)

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, game.ErrNoTeam), errors.Is(err, game.ErrConfirmationRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInsufficientCash), errors.Is(err, game.ErrInsufficientTechPoints):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, game.ErrResearchBusy), errors.Is(err, game.ErrLocked), errors.Is(err, game.ErrAlreadyDone),
		errors.Is(err, game.ErrNoNegotiation), errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeOK wraps fields in the success envelope.
func writeOK(w http.ResponseWriter, status int, fields map[string]any) {
	out := map[string]any{"ok": true}
	for k, v := range fields {
		out[k] = v
	}
	writeJSON(w, status, out)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "msg": strings.TrimSpace(message)})
}
