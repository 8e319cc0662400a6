package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Annular/internal/auth"
	"Annular/internal/repo"

	"github.com/gorilla/mux"
)

func TestRuns(t *testing.T) {
	ctx := context.Background()
	mem := repo.NewMemory()
	uid, _ := mem.CreateUser(ctx, "anna", "anna@example.com", "hash")
	id, _ := mem.SaveRun(ctx, repo.Run{UserID: uid, Substance: "Water", Points: 4, Input: json.RawMessage(`{}`), Output: json.RawMessage(`{}`)})

	h := &ProfileHandler{Repo: mem, Runs: mem}
	r := mux.NewRouter()
	r.HandleFunc("/profile", h.GetProfile)
	r.HandleFunc("/runs", h.ListRuns)
	r.HandleFunc("/runs/{id}", h.GetRun)

	get := func(path string, user int) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != 0 {
			req = req.WithContext(auth.WithUser(req.Context(), user, "anna"))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/runs", uid)
	var runs []repo.Run
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil || len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("runs = %+v, %v", runs, err)
	}

	rec = get("/runs/"+id, uid)
	var run repo.Run
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil || run.Points != 4 {
		t.Errorf("run = %+v, %v", run, err)
	}

	if rec := get("/runs/"+id, uid+1); rec.Code != http.StatusNotFound {
		t.Errorf("foreign run status = %d", rec.Code)
	}
	if rec := get("/runs?limit=x", uid); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
	if rec := get("/runs", 0); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	rec = get("/profile", uid)
	var p repo.Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil || p.Runs != 1 || p.Login != "anna" {
		t.Errorf("profile = %+v, %v", p, err)
	}
}
