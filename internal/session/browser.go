package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// BrowserCookie - cookie с идентификатором профиля браузера.
const BrowserCookie = "sf_browser"

const browserCookieMaxAge = 365 * 24 * 3600

// BrowserIdentity выдает и проверяет подписанный идентификатор браузера.
// Им ограничена область хранилища, как localStorage ограничен origin.
type BrowserIdentity struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewBrowserIdentity; blockKey может быть пустым - тогда значение только подписывается.
func NewBrowserIdentity(hashKey, blockKey []byte, secure bool) *BrowserIdentity {
	if len(blockKey) == 0 {
		blockKey = nil
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(browserCookieMaxAge)

	return &BrowserIdentity{sc: sc, secure: secure}
}

// Peek читает идентификатор, ничего не выдавая.
func (b *BrowserIdentity) Peek(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(BrowserCookie)
	if err != nil {
		return "", false
	}

	var id string
	if err := b.sc.Decode(BrowserCookie, cookie.Value, &id); err != nil {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ID возвращает идентификатор браузера; если cookie нет или она подделана, выдает новый.
func (b *BrowserIdentity) ID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := b.Peek(r); ok {
		return id
	}

	id := uuid.NewString()
	encoded, err := b.sc.Encode(BrowserCookie, id)
	if err != nil {
		return id
	}

	http.SetCookie(w, &http.Cookie{
		Name:     BrowserCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   browserCookieMaxAge,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	// повторный вызов в том же запросе должен вернуть тот же id
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name != BrowserCookie {
			r.AddCookie(c)
		}
	}
	r.AddCookie(&http.Cookie{Name: BrowserCookie, Value: encoded})
	return id
}
