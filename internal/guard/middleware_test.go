package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"shopoholic/internal/domain"
	"shopoholic/internal/notify"
	"shopoholic/internal/session"
	"shopoholic/internal/storage"
)

// fixedResolver отдает один и тот же Store, как будто все запросы из одного браузера.
type fixedResolver struct {
	store    *session.Store
	released int
}

func (f *fixedResolver) Resolve(http.ResponseWriter, *http.Request) (*session.Store, func()) {
	return f.store, func() { f.released++ }
}

type brokenArea struct {
	storage.Area
}

func (brokenArea) GetItems(context.Context, ...string) (map[string]string, error) {
	return nil, storage.ErrUnavailable
}

type GuardMiddlewareSuite struct {
	suite.Suite
	ctx      context.Context
	mem      *storage.Memory
	store    *session.Store
	resolver *fixedResolver
	guard    *Guard
	reached  bool
}

func TestGuardMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(GuardMiddlewareSuite))
}

func (s *GuardMiddlewareSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = storage.NewMemory()
	s.store = session.NewStore(s.mem.Area("b1"), notify.New(zerolog.Nop()), zerolog.Nop())
	s.resolver = &fixedResolver{store: s.store}
	s.guard = &Guard{
		Policy: DefaultPolicy(),
		Table: Table{
			"/checkout": Authenticated,
			"/cart":     Authenticated,
			"/admin/*":  Admin,
		},
		Resolver: s.resolver,
		Log:      zerolog.Nop(),
	}
	s.reached = false
}

func (s *GuardMiddlewareSuite) serve(target string) *httptest.ResponseRecorder {
	h := s.guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		st, ok := StoreFrom(r.Context())
		s.True(ok)
		s.Same(s.store, st)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *GuardMiddlewareSuite) TestGuestRedirectedToLogin() {
	rec := s.serve("/checkout")

	s.False(s.reached)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login?from=%2Fcheckout", rec.Header().Get("Location"))
	s.Equal(1, s.resolver.released)
}

func (s *GuardMiddlewareSuite) TestReturnPathKeepsQuery() {
	rec := s.serve("/checkout?step=2")

	s.Equal("/login?from=%2Fcheckout%3Fstep%3D2", rec.Header().Get("Location"))
}

func (s *GuardMiddlewareSuite) TestFormPostHasNoReturnPath() {
	h := s.guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

	s.False(s.reached)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *GuardMiddlewareSuite) TestPublicPageReachesHandler() {
	rec := s.serve("/")

	s.True(s.reached)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *GuardMiddlewareSuite) TestCustomerOnAdminPage() {
	s.Require().NoError(s.store.Set(s.ctx, "t", domain.Profile{ID: 2, Role: domain.RoleUser}))

	rec := s.serve("/admin/users")

	s.False(s.reached)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
}

func (s *GuardMiddlewareSuite) TestAdminOnAdminPage() {
	s.Require().NoError(s.store.Set(s.ctx, "t", domain.Profile{ID: 1, Role: domain.RoleAdmin}))

	rec := s.serve("/admin/users")

	s.True(s.reached)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *GuardMiddlewareSuite) TestNavigationRereadsStorage() {
	s.Require().NoError(s.store.Set(s.ctx, "t", domain.Profile{ID: 2, Role: domain.RoleUser}))

	// другая вкладка вышла, а событие до нас еще не дошло
	other := session.NewStore(s.mem.Area("b1"), notify.New(zerolog.Nop()), zerolog.Nop())
	s.Require().NoError(other.Clear(s.ctx))
	s.True(s.store.Current().IsAuthenticated)

	rec := s.serve("/checkout")

	s.False(s.reached)
	s.Equal(http.StatusSeeOther, rec.Code)
}

func (s *GuardMiddlewareSuite) TestLoadingInsteadOfRedirectWhenStorageIsDown() {
	s.resolver.store = session.NewStore(brokenArea{s.mem.Area("b1")}, notify.New(zerolog.Nop()), zerolog.Nop())

	rec := s.serve("/checkout")

	s.False(s.reached)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Empty(rec.Header().Get("Location"))
	s.Contains(rec.Body.String(), "Загрузка")
}

func TestSnapshotFromWithoutStore(t *testing.T) {
	assert.Equal(t, session.Anonymous(), SnapshotFrom(context.Background()))
}

func TestWatchEvictsTabAfterLogoutElsewhere(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	tabA := session.NewStore(mem.Area("b1"), notify.New(zerolog.Nop()), zerolog.Nop())
	tabB := session.NewStore(mem.Area("b1"), notify.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, tabB.Start(ctx))
	defer tabB.Close()

	require.NoError(t, tabA.Set(ctx, "t", domain.Profile{ID: 2, Role: domain.RoleUser}))
	require.NoError(t, tabB.Load(ctx))

	decisions := make(chan Decision, 8)
	stop := Watch(tabB, DefaultPolicy(), Authenticated, "/checkout", func(d Decision) { decisions <- d })
	defer stop()

	first := <-decisions
	require.Equal(t, Allowed, first.Outcome)

	require.NoError(t, tabA.Clear(ctx))

	timeout := time.After(2 * time.Second)
	for {
		select {
		case d := <-decisions:
			if d.Outcome == RedirectToLogin {
				assert.Equal(t, "/checkout", d.ReturnPath)
				return
			}
		case <-timeout:
			t.Fatal("tab B kept showing the protected view")
		}
	}
}

func TestWatchStop(t *testing.T) {
	st := session.NewStore(storage.NewMemory().Area("b1"), notify.New(zerolog.Nop()), zerolog.Nop())

	var calls int
	stop := Watch(st, DefaultPolicy(), Authenticated, "/orders", func(Decision) { calls++ })
	assert.Equal(t, 1, calls)

	stop()
	stop()
	require.NoError(t, st.Clear(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Zero(t, st.Notifier().Len())
}

func (s *GuardMiddlewareSuite) TestWatchIsPendingUntilLoaded() {
	var got Decision
	stop := Watch(s.store, s.guard.Policy, Admin, "/admin", func(d Decision) { got = d })
	defer stop()

	s.Equal(Pending, got.Outcome)
}
