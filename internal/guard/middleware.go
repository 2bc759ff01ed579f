package guard

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"shopoholic/internal/metrics"
	"shopoholic/internal/session"
)

// StoreResolver выдает Store браузера для запроса; release вызывается по завершении запроса.
type StoreResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*session.Store, func())
}

type storeKey struct{}

// StoreFrom - Store браузера, положенный в контекст middleware.
func StoreFrom(ctx context.Context) (*session.Store, bool) {
	st, ok := ctx.Value(storeKey{}).(*session.Store)
	return st, ok
}

// WithStore кладет Store в контекст.
func WithStore(ctx context.Context, st *session.Store) context.Context {
	return context.WithValue(ctx, storeKey{}, st)
}

// SnapshotFrom - текущий снимок сессии запроса; гость, если Store нет.
func SnapshotFrom(ctx context.Context) session.Snapshot {
	if st, ok := StoreFrom(ctx); ok {
		return st.Current()
	}
	return session.Anonymous()
}

// Guard - единая проверка всех маршрутов по таблице требований.
type Guard struct {
	Policy   Policy
	Table    Table
	Resolver StoreResolver
	// Loading рисует нейтральную заглушку для Pending.
	Loading http.Handler
	Log     zerolog.Logger
}

// Decide перечитывает сессию (каждая навигация видит истину из хранилища)
// и выносит решение для запроса.
func (g *Guard) Decide(ctx context.Context, st *session.Store, requested string, req Requirement) Decision {
	if err := st.Load(ctx); err != nil {
		g.Log.Warn().Err(err).Str("path", requested).Msg("guard: не удалось прочитать сессию")
	}

	d := g.Policy.Evaluate(st.Ready(), st.Current(), req, requested)
	metrics.GuardDecisions.WithLabelValues(d.Outcome.String()).Inc()
	return d
}

// Middleware применяет Guard к каждому запросу.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, release := g.Resolver.Resolve(w, r)
		defer release()

		req := g.Table.Requirement(r.URL.Path)
		d := g.Decide(r.Context(), st, requestedPath(r), req)

		switch d.Outcome {
		case Allowed:
			next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), st)))
		case Pending:
			g.loading().ServeHTTP(w, r)
		default:
			g.Log.Debug().
				Str("path", r.URL.Path).
				Str("requirement", req.String()).
				Str("outcome", d.Outcome.String()).
				Msg("guard: редирект")
			http.Redirect(w, r, d.Location, http.StatusSeeOther)
		}
	})
}

// requestedPath - куда вернуть пользователя после входа. Отправку формы
// повторить нельзя, поэтому для не-GET запросов пути возврата нет.
func requestedPath(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return ""
	}
	return r.URL.RequestURI()
}

func (g *Guard) loading() http.Handler {
	if g.Loading != nil {
		return g.Loading
	}
	return http.HandlerFunc(LoadingHandler)
}

// LoadingHandler - заглушка по умолчанию: страница сама обновится через секунду.
func LoadingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><meta http-equiv="refresh" content="1"></head>` +
		`<body><div class="loading-spinner">Загрузка...</div></body></html>`))
}
