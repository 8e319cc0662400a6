package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	film "Annular/internal/calc/film"
	"Annular/internal/calc/premium/batch"

	log "github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

type Handler struct {
	Env film.Env
}

type FilmImportResult struct {
	Count int `json:"count"`

	// Skipped lists sheet rows whose velocities could not be read.
	Skipped []int `json:"skipped,omitempty"`
	batch.FilmBatchResult
}

// Film solves the points of an uploaded sheet. The form field "input" holds
// the channel and phase properties as JSON.
func (h *Handler) Film(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var in batch.FilmBatchInput
	if err := json.Unmarshal([]byte(r.FormValue("input")), &in.Input); err != nil {
		http.Error(w, "Invalid input field", http.StatusBadRequest)
		return
	}
	var skipped []int
	in.Points, skipped, err = ReadPoints(file)
	if err != nil {
		if errors.Is(err, ErrNoPoints) || errors.Is(err, film.ErrConfiguration) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	res, err := batch.CalculateFilm(r.Context(), in, h.Env)
	if err != nil {
		http.Error(w, err.Error(), film.StatusFor(err))
		return
	}
	entry := log.WithFields(log.Fields{"points": len(in.Points), "failed": res.Failed, "skipped": len(skipped)})
	if len(skipped) > 0 {
		entry.Warn("sheet imported with unreadable rows")
	} else {
		entry.Info("sheet imported")
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FilmImportResult{Count: len(res.Results), Skipped: skipped, FilmBatchResult: res})
}

// Export runs a calculation and returns its records as an xlsx download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input film.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	out, err := film.Calculate(r.Context(), input, h.Env)
	if err != nil {
		http.Error(w, err.Error(), film.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"film.xlsx\"")
	if err := WriteRecords(w, out); err != nil {
		log.WithError(err).Error("xlsx export")
		http.Error(w, "Export error", http.StatusInternalServerError)
	}
}
