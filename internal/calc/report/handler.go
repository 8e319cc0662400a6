package report

import (
	"encoding/json"
	"net/http"
	"time"

	film "Annular/internal/calc/film"

	log "github.com/sirupsen/logrus"
)

type Input struct {
	Meta
	Calc film.Input `json:"calc"`
}

type Handler struct {
	Env film.Env
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	out, err := film.Calculate(r.Context(), input.Calc, h.Env)
	if err != nil {
		http.Error(w, err.Error(), film.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	if err := Generate(w, input.Meta, out, time.Now()); err != nil {
		log.WithError(err).Error("pdf report")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}
