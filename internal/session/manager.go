package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"shopoholic/internal/metrics"
	"shopoholic/internal/notify"
	"shopoholic/internal/storage"
)

// Manager раздает Store по идентификатору браузера. Все вкладки одного браузера,
// обслуживаемые этим процессом, делят один Store и один Notifier.
type Manager struct {
	backend storage.Backend
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	store *Store
	refs  int
	// started закрывается, когда подписка на изменения установлена (или не удалась)
	started chan struct{}
}

func NewManager(backend storage.Backend, log zerolog.Logger) *Manager {
	return &Manager{
		backend: backend,
		log:     log,
		entries: make(map[string]*entry),
	}
}

// Acquire возвращает Store браузера и функцию освобождения. Store живет, пока
// его кто-то держит; последний release останавливает ретрансляцию и выбрасывает его.
// Состояние не загружается: вызывающий сам делает Load.
// Подписка идет вне общего замка: медленное хранилище задерживает только этот браузер.
func (m *Manager) Acquire(ctx context.Context, browserID string) (*Store, func()) {
	m.mu.Lock()
	e, ok := m.entries[browserID]
	if !ok {
		log := m.log.With().Str("browser", browserID).Logger()
		e = &entry{
			store:   NewStore(m.backend.Area(browserID), notify.New(log), log),
			started: make(chan struct{}),
		}
		m.entries[browserID] = e
		metrics.ActiveSessionStores.Inc()
	}
	e.refs++
	m.mu.Unlock()

	if !ok {
		if err := e.store.Start(context.WithoutCancel(ctx)); err != nil {
			e.store.log.Warn().Err(err).Msg("session: синхронизация между вкладками недоступна")
		}
		close(e.started)
	} else {
		<-e.started
	}

	var once sync.Once
	release := func() {
		once.Do(func() { m.release(browserID, e) })
	}
	return e.store, release
}

func (m *Manager) release(browserID string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs > 0 || m.entries[browserID] != e {
		m.mu.Unlock()
		return
	}
	delete(m.entries, browserID)
	m.mu.Unlock()

	metrics.ActiveSessionStores.Dec()
	e.store.Close()
}

// Len - сколько браузеров сейчас держит процесс.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close останавливает все Store. Используется при остановке процесса и в тестах.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		metrics.ActiveSessionStores.Dec()
		e.store.Close()
	}
}
