package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/queue"
	"github.com/iliyamo/notebook-api/internal/repository"
)

var errStore = errors.New("store unavailable")

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]model.User
	failGet error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return model.User{}, m.failGet
	}
	for _, u := range m.byID {
		if u.Email == repository.NormalizeEmail(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return model.User{}, m.failGet
	}
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type memNotes struct {
	mu        sync.Mutex
	byID      map[string]model.Note
	order     []string
	calls     int
	failWrite error
	// afterList runs once the listing is read, outside the lock
	afterList func()
}

func newMemNotes() *memNotes { return &memNotes{byID: map[string]model.Note{}} }

func (m *memNotes) ListByOwner(_ context.Context, ownerID string) ([]model.Note, error) {
	m.mu.Lock()
	m.calls++
	var out []model.Note
	for _, id := range m.order {
		if n, ok := m.byID[id]; ok && n.UserID == ownerID {
			out = append(out, n)
		}
	}
	hook := m.afterList
	m.afterList = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *memNotes) Create(_ context.Context, n *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return m.failWrite
	}
	m.byID[n.ID] = *n
	m.order = append(m.order, n.ID)
	return nil
}

func (m *memNotes) GetByID(_ context.Context, id string) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n, ok := m.byID[id]
	if !ok {
		return model.Note{}, repository.ErrNotFound
	}
	return n, nil
}

func (m *memNotes) Update(_ context.Context, n model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return m.failWrite
	}
	cur, ok := m.byID[n.ID]
	if !ok || cur.UserID != n.UserID {
		return repository.ErrNotFound
	}
	m.byID[n.ID] = n
	return nil
}

func (m *memNotes) Delete(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failWrite != nil {
		return m.failWrite
	}
	cur, ok := m.byID[id]
	if !ok || cur.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memNotes) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type spyPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *spyPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *spyPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type mapCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	entries     map[string][]model.Note
	invalidated []string
	err         error
}

func newMapCache() *mapCache {
	return &mapCache{gens: map[string]int64{}, entries: map[string][]model.Note{}}
}

func (c *mapCache) key(ownerID string, gen int64) string {
	return fmt.Sprintf("%s:%d", ownerID, gen)
}

func (c *mapCache) Generation(_ context.Context, ownerID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.gens[ownerID], nil
}

func (c *mapCache) Get(_ context.Context, ownerID string, gen int64) ([]model.Note, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	n, ok := c.entries[c.key(ownerID, gen)]
	return n, ok, nil
}

func (c *mapCache) Set(_ context.Context, ownerID string, gen int64, notes []model.Note) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[c.key(ownerID, gen)] = notes
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ownerID)
	if c.err != nil {
		return c.err
	}
	c.gens[ownerID]++
	return nil
}
