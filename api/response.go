package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/carlosfiori/integrador-apis/internal/upstream"
)

func WriteJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := upstream.JSON.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Error encoding JSON")
	}
}

func WriteError(w http.ResponseWriter, msg, kind string, code int) {
	WriteJSON(w, ErrorResponse{Message: msg, Kind: kind}, code)
}
