package film

import (
	"encoding/json"
	"errors"
	"net/http"

	"Annular/internal/auth"
	"Annular/internal/repo"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Env Env
	// Runs stores finished calculations; nil disables storage.
	Runs repo.RunRepository
}

// StatusFor maps a calculation error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrRootNotBracketed), errors.Is(err, ErrDomain), errors.Is(err, ErrNoConvergence):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	entry := log.WithFields(log.Fields{"path": r.URL.Path, "status": status, "error": err})
	if status == http.StatusInternalServerError {
		entry.Error("film calculation failed")
		http.Error(w, "Calculation error", status)
		return
	}
	entry.Info("film calculation rejected")
	http.Error(w, err.Error(), status)
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(r.Context(), input, h.Env)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res.RunID = h.store(r, input, res)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// store saves the run for the authenticated user. A storage failure is
// logged and does not fail the request.
func (h *Handler) store(r *http.Request, in Input, out Output) string {
	userID, ok := auth.UserIDFromContext(r.Context())
	if h.Runs == nil || !ok {
		return ""
	}
	inJSON, err := json.Marshal(in)
	if err != nil {
		log.WithError(err).Error("encode run input")
		return ""
	}
	outJSON, err := json.Marshal(out)
	if err != nil {
		log.WithError(err).Error("encode run output")
		return ""
	}
	id, err := h.Runs.SaveRun(r.Context(), repo.Run{
		UserID:    userID,
		Substance: out.Summary.Substance,
		Points:    out.Summary.Points,
		Failed:    out.Failed,
		Input:     inJSON,
		Output:    outJSON,
	})
	if err != nil {
		log.WithFields(log.Fields{"user": userID, "error": err}).Error("save run")
		return ""
	}
	return id
}

// PointInput is a single operating point with its channel and properties.
type PointInput struct {
	Input
	Jg float64 `json:"jg"`
	Jl float64 `json:"jl"`
}

func (h *Handler) Point(w http.ResponseWriter, r *http.Request) {
	var input PointInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	in := input.Input
	in.Params.GasVelocity = Values{input.Jg}
	in.Params.LiquidVelocity = Values{input.Jl}
	in.Params.G, in.Params.X = nil, nil
	in.Policy = PolicyAbort

	res, err := Calculate(r.Context(), in, h.Env)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res.Results.Flat()[0])
}

type substancesResponse struct {
	Substances []string `json:"substances"`
}

func (h *Handler) Substances(w http.ResponseWriter, r *http.Request) {
	resp := substancesResponse{Substances: []string{}}
	if h.Env.Provider != nil {
		resp.Substances = h.Env.Provider.Substances()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
