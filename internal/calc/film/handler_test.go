package film

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Annular/internal/auth"
	"Annular/internal/props"
	"Annular/internal/repo"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{configError("x"), http.StatusBadRequest},
		{fmt.Errorf("%w: %w", ErrPropertyLookup, props.ErrUnsupported), http.StatusBadRequest},
		{&PointError{Err: ErrRootNotBracketed}, http.StatusUnprocessableEntity},
		{&PointError{Err: ErrDomain}, http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHandlerCalcStoresRun(t *testing.T) {
	runs := repo.NewMemory()
	h := &Handler{Env: env(props.NewTable()), Runs: runs}

	body := `{"params": {"Substance": "Water", "Temperature": 100, "G": [100, 200], "x": 0.5}}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/film/calc", strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), 7, "anna"))
	rec := httptest.NewRecorder()
	h.Calc(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	var out struct {
		RunID   string     `json:"run_id"`
		Summary Summary    `json:"summary"`
		Results [][]Record `json:"results"`
		Failed  int        `json:"failed"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 2 || len(out.Results[0]) != 1 || out.Summary.Substance != "Water" {
		t.Fatalf("response = %+v", out)
	}
	if out.RunID == "" {
		t.Fatal("run id missing")
	}
	run, err := runs.GetRun(context.Background(), 7, out.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Points != 2 || run.Substance != "Water" || len(run.Output) == 0 {
		t.Errorf("stored run = %+v", run)
	}
}

func TestHandlerCalcErrors(t *testing.T) {
	h := &Handler{Env: env(props.NewTable())}
	cases := map[string]struct {
		body string
		want int
	}{
		"bad json":      {`{"params": `, http.StatusBadRequest},
		"no velocities": {`{"params": {"Substance": "Water", "Temperature": 100}}`, http.StatusBadRequest},
		"unknown fluid": {`{"params": {"Substance": "Mercury", "Temperature": 100, "G": 100, "x": 0.5}}`, http.StatusBadRequest},
		"not bracketed": {`{"d": 0.1, "params": {"Liquid density": 1000, "Liquid viscosity": 0.001, "Gas density": 1.2, "Gas viscosity": 1.8e-5, "Liquid velocity": 0, "Gas velocity": 10}}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Calc(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/film/calc", strings.NewReader(tc.body)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerPoint(t *testing.T) {
	h := &Handler{Env: env(nil)}
	body := `{"jg": 20, "jl": 0.05, "d": 0.01, "params": {"Substance": "air-water", "Liquid density": 1000, "Liquid viscosity": 0.001, "Gas density": 1.2, "Gas viscosity": 1.8e-5}}`
	rec := httptest.NewRecorder()
	h.Point(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/film/point", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	var r Record
	if err := json.NewDecoder(rec.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if !r.Solved || !near(r.B, 1.5637368429e-4, 1e-6) || r.Jg != 20 {
		t.Errorf("record = %+v", r)
	}
}

func TestHandlerSubstances(t *testing.T) {
	h := &Handler{Env: env(props.NewTable())}
	rec := httptest.NewRecorder()
	h.Substances(rec, httptest.NewRequest(http.MethodGet, "/api/substances", nil))
	var resp substancesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Substances) != 2 {
		t.Errorf("substances = %v", resp.Substances)
	}
}
