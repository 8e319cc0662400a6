package batch

import (
	"encoding/json"
	"net/http"

	film "Annular/internal/calc/film"
)

type Handler struct {
	Env film.Env
}

func (h *Handler) Film(w http.ResponseWriter, r *http.Request) {
	var input FilmBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateFilm(r.Context(), input, h.Env)
	if err != nil {
		http.Error(w, err.Error(), film.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
