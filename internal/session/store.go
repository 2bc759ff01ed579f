package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"shopoholic/internal/domain"
	"shopoholic/internal/notify"
	"shopoholic/internal/storage"
)

// Store - единственный источник истины о сессии одного профиля браузера в процессе.
// Мутации идут только через Set/Clear; наблюдатели подписываются на Notifier.
type Store struct {
	area     storage.Area
	notifier *notify.Notifier
	log      zerolog.Logger

	mu    sync.RWMutex
	token string
	snap  Snapshot
	ready bool
	// gen растет на каждом Set/Clear; Load не применяет прочитанное, если он сдвинулся
	gen uint64

	relayMu   sync.Mutex
	stopRelay context.CancelFunc
	relayDone chan struct{}
	closed    bool
}

func NewStore(area storage.Area, notifier *notify.Notifier, log zerolog.Logger) *Store {
	return &Store{
		area:     area,
		notifier: notifier,
		log:      log,
		snap:     Anonymous(),
	}
}

// Notifier - через него Store объявляет о каждом изменении.
func (s *Store) Notifier() *notify.Notifier {
	return s.notifier
}

// Load перечитывает сохраненное состояние. Пока не было ни одной успешной загрузки,
// Ready возвращает false. При ошибке хранилища прежний снимок сохраняется.
// Если во время чтения прошел Set или Clear, прочитанное устарело и отбрасывается.
func (s *Store) Load(ctx context.Context) error {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	items, err := s.area.GetItems(ctx, KeyToken, KeyUser)
	if err != nil {
		return fmt.Errorf("session: load: %w", err)
	}

	token, snap, err := decode(items)
	if err != nil {
		s.log.Debug().Err(err).Msg("session: сохраненный профиль не читается, сессия гостевая")
	}

	s.mu.Lock()
	if s.gen == gen {
		s.token = token
		s.snap = snap
		s.ready = true
	}
	s.mu.Unlock()

	return nil
}

// Ready - загружено ли состояние хотя бы раз.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Current возвращает снимок сессии и никогда не падает.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Token - учетные данные для запросов к бэкенду; пусто у гостя.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set сохраняет токен и профиль одной записью, затем уведомляет подписчиков.
func (s *Store) Set(ctx context.Context, token string, profile domain.Profile) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !profile.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, profile.Role)
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("session: encode profile: %w", err)
	}

	err = s.area.SetItems(ctx, map[string]string{
		KeyToken: token,
		KeyUser:  string(raw),
	})
	if err != nil {
		return fmt.Errorf("session: set: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.snap = authenticated(profile)
	s.ready = true
	s.gen++
	s.mu.Unlock()

	s.notifier.Notify()
	return nil
}

// Clear удаляет сессию и уведомляет подписчиков. Повторный вызов безопасен.
// Даже если хранилище недоступно, этот процесс считает сессию гостевой.
func (s *Store) Clear(ctx context.Context) error {
	err := s.area.RemoveItems(ctx, KeyToken, KeyUser)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: не удалось очистить хранилище")
		err = fmt.Errorf("session: clear: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.snap = Anonymous()
	s.ready = true
	s.gen++
	s.mu.Unlock()

	s.notifier.Notify()
	return err
}

// Start подписывается на изменения из других вкладок и ретранслирует их
// в Notifier, каждый раз перечитывая хранилище перед рассылкой.
// После Close не делает ничего.
func (s *Store) Start(ctx context.Context) error {
	s.relayMu.Lock()
	defer s.relayMu.Unlock()

	if s.stopRelay != nil || s.closed {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, err := s.area.Changes(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("session: subscribe: %w", err)
	}

	done := make(chan struct{})
	s.stopRelay = cancel
	s.relayDone = done

	go func() {
		defer close(done)
		s.notifier.Relay(ctx, changes, s.refresh)
	}()
	return nil
}

// Close останавливает ретрансляцию и ждет ее завершения.
func (s *Store) Close() {
	s.relayMu.Lock()
	cancel, done := s.stopRelay, s.relayDone
	s.stopRelay, s.relayDone = nil, nil
	s.closed = true
	s.relayMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Store) refresh(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session: не удалось перечитать сессию после изменения в другой вкладке")
	}
}
