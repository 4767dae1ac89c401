package feed

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enso-app/enso/internal/config"
	"github.com/enso-app/enso/internal/models"
)

var ErrSessionNotFound = errors.New("feed session not found")

// Manager owns the live feed sessions. Sessions are addressed by UUID and
// evicted after a period without client interaction.
type Manager struct {
	cfg    config.FeedConfig
	loader ImageLoader

	mu       sync.Mutex
	sessions map[string]*Session

	stopJanitor chan struct{}
	janitorOnce sync.Once
}

func NewManager(cfg config.FeedConfig, loader ImageLoader) *Manager {
	m := &Manager{
		cfg:         cfg,
		loader:      loader,
		sessions:    make(map[string]*Session),
		stopJanitor: make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Create assembles a new session over the given working set and registers it.
func (m *Manager) Create(items []models.Item, datasetKey string) *Session {
	s := NewSession(uuid.New().String(), items, datasetKey, m.cfg, m.loader)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// ResetAll pushes a new working set into every live session, as after an
// upload changes the dataset identity. rebuild runs once per session so each
// keeps its own shuffle.
func (m *Manager) ResetAll(rebuild func() ([]models.Item, string)) {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	for _, s := range live {
		items, key := rebuild()
		s.ResetDataset(items, key)
	}
}

// Stop halts the janitor and closes every session.
func (m *Manager) Stop() {
	m.janitorOnce.Do(func() { close(m.stopJanitor) })
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) janitor() {
	interval := m.cfg.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopJanitor:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *Manager) evictExpired() {
	cutoff := time.Now().Add(-m.cfg.SessionTTL)
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastTouched().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.Close()
	}
}
