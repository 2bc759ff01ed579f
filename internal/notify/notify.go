// Package notify рассылает событие "сессия изменилась" подписчикам процесса
// и ретранслирует такие же события, пришедшие из других вкладок через хранилище.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopoholic/internal/metrics"
	"shopoholic/internal/storage"
)

// Event не несет данных: получатель всегда перечитывает текущую сессию.
type Event struct{}

// Listener - обработчик события. Вызывается синхронно в горутине того, кто уведомляет.
type Listener func(Event)

// Handle идентифицирует регистрацию обработчика.
type Handle string

type registration struct {
	handle Handle
	fn     Listener
	active atomic.Bool
}

// Notifier - широковещатель событий смены сессии.
type Notifier struct {
	mu        sync.RWMutex
	listeners []*registration
	log       zerolog.Logger
}

func New(log zerolog.Logger) *Notifier {
	return &Notifier{log: log}
}

// Register добавляет обработчик в конец очереди доставки.
func (n *Notifier) Register(fn Listener) Handle {
	reg := &registration{handle: Handle(uuid.NewString()), fn: fn}
	reg.active.Store(true)

	n.mu.Lock()
	n.listeners = append(n.listeners, reg)
	n.mu.Unlock()

	return reg.handle
}

// Unregister снимает обработчик. После возврата он больше не будет вызван,
// даже если рассылка уже идет. Повторный вызов ничего не делает.
func (n *Notifier) Unregister(handle Handle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, reg := range n.listeners {
		if reg.handle == handle {
			reg.active.Store(false)
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки для defer.
func (n *Notifier) Subscribe(fn Listener) (cancel func()) {
	handle := n.Register(fn)
	var once sync.Once
	return func() {
		once.Do(func() { n.Unregister(handle) })
	}
}

// Len - число зарегистрированных обработчиков.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Notify синхронно вызывает обработчики в порядке регистрации.
// В хранилище ничего не пишет.
func (n *Notifier) Notify() {
	n.fanOut(metrics.SourceLocal)
}

func (n *Notifier) fanOut(source string) {
	n.mu.RLock()
	listeners := make([]*registration, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	metrics.SessionNotifications.WithLabelValues(source).Inc()

	for _, reg := range listeners {
		if !reg.active.Load() {
			continue
		}
		n.deliver(reg)
	}
}

func (n *Notifier) deliver(reg *registration) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ListenerPanics.Inc()
			n.log.Error().
				Interface("panic", r).
				Str("handle", string(reg.handle)).
				Msg("notify: обработчик сессии упал")
		}
	}()
	reg.fn(Event{})
}

// Relay ретранслирует изменения области, сделанные другими вкладками:
// на каждое событие сначала вызывается refresh (перечитать истину), затем рассылка.
// Доставка best-effort: события могут задерживаться и схлопываться.
// Возвращается, когда канал changes закрыт (см. storage.Area.Changes).
func (n *Notifier) Relay(ctx context.Context, changes <-chan storage.Change, refresh func(context.Context)) {
	for change := range changes {
		n.log.Debug().
			Strs("keys", change.Keys).
			Str("origin", change.Origin).
			Msg("notify: изменение сессии из другой вкладки")

		if refresh != nil {
			refresh(ctx)
		}
		n.fanOut(metrics.SourceRemote)
	}
}
