package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// размер буфера подписчика; при переполнении события схлопываются
const changeBuffer = 16

// Memory - хранилище в памяти процесса. Подходит для одного экземпляра витрины и тестов.
type Memory struct {
	mu       sync.RWMutex
	areas    map[string]map[string]string
	watchers map[string]map[*watcher]struct{}
}

type watcher struct {
	origin string
	ch     chan Change
}

func NewMemory() *Memory {
	return &Memory{
		areas:    make(map[string]map[string]string),
		watchers: make(map[string]map[*watcher]struct{}),
	}
}

// Area возвращает новый дескриптор области scope.
func (m *Memory) Area(scope string) Area {
	return &memoryArea{m: m, scope: scope, id: uuid.NewString()}
}

type memoryArea struct {
	m     *Memory
	scope string
	id    string
}

func (a *memoryArea) ID() string {
	return a.id
}

func (a *memoryArea) Get(_ context.Context, key string) (string, bool, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	value, ok := a.m.areas[a.scope][key]
	return value, ok, nil
}

func (a *memoryArea) GetItems(_ context.Context, keys ...string) (map[string]string, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	items := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := a.m.areas[a.scope][k]; ok {
			items[k] = v
		}
	}
	return items, nil
}

func (a *memoryArea) SetItems(_ context.Context, items map[string]string) error {
	a.m.mu.Lock()
	area := a.m.areas[a.scope]
	if area == nil {
		area = make(map[string]string, len(items))
		a.m.areas[a.scope] = area
	}

	var changed []string
	for k, v := range items {
		if old, ok := area[k]; ok && old == v {
			continue
		}
		area[k] = v
		changed = append(changed, k)
	}
	a.m.mu.Unlock()

	a.m.publish(a.scope, a.id, changed)
	return nil
}

func (a *memoryArea) RemoveItems(_ context.Context, keys ...string) error {
	a.m.mu.Lock()
	area := a.m.areas[a.scope]

	var changed []string
	for _, k := range keys {
		if _, ok := area[k]; ok {
			delete(area, k)
			changed = append(changed, k)
		}
	}
	if area != nil && len(area) == 0 {
		delete(a.m.areas, a.scope)
	}
	a.m.mu.Unlock()

	a.m.publish(a.scope, a.id, changed)
	return nil
}

func (a *memoryArea) Changes(ctx context.Context) (<-chan Change, error) {
	w := &watcher{origin: a.id, ch: make(chan Change, changeBuffer)}

	a.m.mu.Lock()
	set := a.m.watchers[a.scope]
	if set == nil {
		set = make(map[*watcher]struct{})
		a.m.watchers[a.scope] = set
	}
	set[w] = struct{}{}
	a.m.mu.Unlock()

	go func() {
		<-ctx.Done()

		a.m.mu.Lock()
		delete(a.m.watchers[a.scope], w)
		if len(a.m.watchers[a.scope]) == 0 {
			delete(a.m.watchers, a.scope)
		}
		close(w.ch)
		a.m.mu.Unlock()
	}()

	return w.ch, nil
}

func (m *Memory) publish(scope, origin string, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for w := range m.watchers[scope] {
		if w.origin == origin {
			continue
		}
		select {
		case w.ch <- Change{Keys: keys, Origin: origin}:
		default:
			// подписчик и так перечитает область на уже ожидающем событии
		}
	}
}
