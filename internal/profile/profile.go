package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"Annular/internal/auth"
	"Annular/internal/repo"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// ProfileHandler serves the signed-in user and their stored runs.
type ProfileHandler struct {
	Repo repo.Repository
	Runs repo.RunRepository
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	prof, err := h.Repo.GetProfileByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

func (h *ProfileHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := h.Runs.ListRuns(r.Context(), userID, limit)
	if err != nil {
		log.WithFields(log.Fields{"user": userID, "error": err}).Error("list runs")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func (h *ProfileHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	run, err := h.Runs.GetRun(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		log.WithFields(log.Fields{"user": userID, "error": err}).Error("get run")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}
