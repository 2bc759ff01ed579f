package session

import "net/http"

// Resolver связывает HTTP-запрос со Store браузера, от которого он пришел.
type Resolver struct {
	Identity *BrowserIdentity
	Manager  *Manager
}

// Resolve выдает (при необходимости) cookie браузера и захватывает его Store.
// release обязателен на всех путях выхода.
func (res *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (*Store, func()) {
	id := res.Identity.ID(w, r)
	return res.Manager.Acquire(r.Context(), id)
}

// Existing захватывает Store, только если браузер уже представился.
func (res *Resolver) Existing(r *http.Request) (*Store, func(), bool) {
	id, ok := res.Identity.Peek(r)
	if !ok {
		return nil, nil, false
	}
	st, release := res.Manager.Acquire(r.Context(), id)
	return st, release, true
}
