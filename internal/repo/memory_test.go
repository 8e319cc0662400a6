package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.CreateUser(ctx, "anna", "anna@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := m.CreateUser(ctx, "anna", "other@example.com", "hash2"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate login: got %v, want ErrDuplicate", err)
	}

	gotID, hash, err := m.GetBylogin(ctx, "anna")
	if err != nil || gotID != id || hash != "hash" {
		t.Fatalf("GetBylogin = %d, %q, %v", gotID, hash, err)
	}
	if _, _, err := m.GetBylogin(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown login: got %v, want ErrNotFound", err)
	}
}

func TestMemoryRuns(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	uid, _ := m.CreateUser(ctx, "anna", "anna@example.com", "hash")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := m.SaveRun(ctx, Run{
			UserID:    uid,
			Substance: "Water",
			Points:    i + 1,
			Input:     json.RawMessage(`{"d":0.01}`),
			Output:    json.RawMessage(`{"failed":0}`),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("run id %q is not a uuid: %v", id, err)
		}
		ids = append(ids, id)
	}

	runs, err := m.ListRuns(ctx, uid, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("ListRuns order wrong: %+v", runs)
	}
	if runs[0].Input != nil || runs[0].Output != nil {
		t.Errorf("ListRuns should not carry payloads")
	}

	run, err := m.GetRun(ctx, uid, ids[0])
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if string(run.Input) != `{"d":0.01}` || run.Points != 1 {
		t.Errorf("GetRun = %+v", run)
	}
	if _, err := m.GetRun(ctx, uid+1, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign run: got %v, want ErrNotFound", err)
	}

	p, err := m.GetProfileByID(ctx, uid)
	if err != nil || p.Runs != 3 || p.Login != "anna" {
		t.Errorf("GetProfileByID = %+v, %v", p, err)
	}
}
