package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AreaSuite прогоняет один и тот же контракт для всех драйверов.
type AreaSuite struct {
	suite.Suite
	newBackend func(t *testing.T) Backend
	backend    Backend
}

func TestMemoryArea(t *testing.T) {
	suite.Run(t, &AreaSuite{newBackend: func(*testing.T) Backend { return NewMemory() }})
}

func TestRedisArea(t *testing.T) {
	suite.Run(t, &AreaSuite{newBackend: newRedisBackend})
}

func newRedisBackend(t *testing.T) Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, "test", time.Hour, zerolog.Nop())
}

func (s *AreaSuite) SetupTest() {
	s.backend = s.newBackend(s.T())
}

func (s *AreaSuite) TestGetMissingKey() {
	value, ok, err := s.backend.Area("b1").Get(context.Background(), "token")
	s.Require().NoError(err)
	s.False(ok)
	s.Empty(value)
}

func (s *AreaSuite) TestSetItemsVisibleToOtherHandles() {
	ctx := context.Background()
	writer := s.backend.Area("b1")
	reader := s.backend.Area("b1")

	s.Require().NoError(writer.SetItems(ctx, map[string]string{"token": "t1", "user": `{"id":1}`}))

	token, ok, err := reader.Get(ctx, "token")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("t1", token)

	user, ok, err := reader.Get(ctx, "user")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(`{"id":1}`, user)
}

func (s *AreaSuite) TestGetItemsOmitsMissingKeys() {
	ctx := context.Background()
	area := s.backend.Area("b1")
	s.Require().NoError(area.SetItems(ctx, map[string]string{"token": "t1"}))

	items, err := area.GetItems(ctx, "token", "user")
	s.Require().NoError(err)
	s.Equal(map[string]string{"token": "t1"}, items)
}

func (s *AreaSuite) TestScopesAreIsolated() {
	ctx := context.Background()
	s.Require().NoError(s.backend.Area("b1").SetItems(ctx, map[string]string{"token": "t1"}))

	_, ok, err := s.backend.Area("b2").Get(ctx, "token")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *AreaSuite) TestRemoveItemsIsIdempotent() {
	ctx := context.Background()
	area := s.backend.Area("b1")
	s.Require().NoError(area.SetItems(ctx, map[string]string{"token": "t1", "user": "{}"}))

	s.Require().NoError(area.RemoveItems(ctx, "token", "user"))
	s.Require().NoError(area.RemoveItems(ctx, "token", "user"))

	_, ok, err := area.Get(ctx, "token")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *AreaSuite) TestChangesSkipOwnWrites() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := s.backend.Area("b1")
	observer := s.backend.Area("b1")

	own, err := writer.Changes(ctx)
	s.Require().NoError(err)
	other, err := observer.Changes(ctx)
	s.Require().NoError(err)

	s.Require().NoError(writer.SetItems(ctx, map[string]string{"user": "{}", "token": "t1"}))

	select {
	case change := <-other:
		s.Equal([]string{"token", "user"}, change.Keys)
		s.Equal(writer.ID(), change.Origin)
	case <-time.After(2 * time.Second):
		s.FailNow("observer did not receive the change")
	}

	select {
	case change := <-own:
		s.Failf("writer received its own change", "%+v", change)
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *AreaSuite) TestRemovingMissingKeysPublishesNothing() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observer := s.backend.Area("b1")
	changes, err := observer.Changes(ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.backend.Area("b1").RemoveItems(ctx, "token", "user"))

	select {
	case change := <-changes:
		s.Failf("unexpected change", "%+v", change)
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *AreaSuite) TestChangesClosedWithContext() {
	ctx, cancel := context.WithCancel(context.Background())
	changes, err := s.backend.Area("b1").Changes(ctx)
	s.Require().NoError(err)

	cancel()

	s.Eventually(func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisSetItemsRefreshesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	backend := NewRedis(rdb, "shop", time.Hour, zerolog.Nop())
	require.NoError(t, backend.Area("b1").SetItems(context.Background(), map[string]string{"token": "t1"}))

	assert.Equal(t, time.Hour, mr.TTL("shop:area:b1"))
}

func TestRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	area := NewRedis(rdb, "shop", 0, zerolog.Nop()).Area("b1")

	_, _, err = area.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = area.SetItems(context.Background(), map[string]string{"token": "t1"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
