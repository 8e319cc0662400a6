package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps users and runs in process. It is used when no DATABASE_URL
// is configured and in tests.
type Memory struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]memUser
	logins map[string]int
	runs   map[string]Run
}

type memUser struct {
	login, email, password string
	created                time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[int]memUser),
		logins: make(map[string]int),
		runs:   make(map[string]Run),
	}
}

func (m *Memory) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logins[login]; ok {
		return 0, ErrDuplicate
	}
	m.nextID++
	m.users[m.nextID] = memUser{login: login, email: email, password: password, created: time.Now()}
	m.logins[login] = m.nextID
	return m.nextID, nil
}

func (m *Memory) GetBylogin(ctx context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.logins[login]
	if !ok {
		return 0, "", ErrNotFound
	}
	return id, m.users[id].password, nil
}

func (m *Memory) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p := Profile{ID: id, Login: u.login, Email: u.email, CreatedAt: u.created}
	for _, run := range m.runs {
		if run.UserID == id {
			p.Runs++
		}
	}
	return p, nil
}

func (m *Memory) SaveRun(ctx context.Context, run Run) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	m.runs[run.ID] = run
	return run.ID, nil
}

func (m *Memory) GetRun(ctx context.Context, userID int, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok || run.UserID != userID {
		return Run{}, ErrNotFound
	}
	return run, nil
}

func (m *Memory) ListRuns(ctx context.Context, userID int, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := []Run{}
	for _, run := range m.runs {
		if run.UserID == userID {
			run.Input, run.Output = nil, nil
			runs = append(runs, run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
