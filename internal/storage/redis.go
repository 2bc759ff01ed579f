package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// HDEL публикует событие, только если что-то действительно удалилось
const removeItemsScript = `
local removed = redis.call("HDEL", KEYS[1], unpack(ARGV, 2))
if removed > 0 then
  redis.call("PUBLISH", KEYS[2], ARGV[1])
end
return removed
`

var removeItemsLua = redis.NewScript(removeItemsScript)

// Redis хранит области в хэшах Redis, а изменения рассылает через pub/sub,
// поэтому несколько экземпляров витрины видят записи друг друга.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis создает хранилище; ttl > 0 продлевает срок жизни области при каждой записи.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration, log zerolog.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (r *Redis) Area(scope string) Area {
	return &redisArea{r: r, scope: scope, id: uuid.NewString()}
}

func (r *Redis) itemsKey(scope string) string {
	return r.prefix + ":area:" + scope
}

func (r *Redis) channel(scope string) string {
	return r.prefix + ":changes:" + scope
}

type redisArea struct {
	r     *Redis
	scope string
	id    string
}

func (a *redisArea) ID() string {
	return a.id
}

func (a *redisArea) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := a.r.client.HGet(ctx, a.r.itemsKey(a.scope), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (a *redisArea) GetItems(ctx context.Context, keys ...string) (map[string]string, error) {
	items := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return items, nil
	}

	values, err := a.r.client.HMGet(ctx, a.r.itemsKey(a.scope), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			items[keys[i]] = s
		}
	}
	return items, nil
}

func (a *redisArea) SetItems(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}

	keys := make([]string, 0, len(items))
	values := make([]any, 0, len(items)*2)
	for k, v := range items {
		keys = append(keys, k)
		values = append(values, k, v)
	}

	payload, err := a.payload(keys)
	if err != nil {
		return err
	}

	itemsKey := a.r.itemsKey(a.scope)
	_, err = a.r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemsKey, values...)
		if a.r.ttl > 0 {
			pipe.Expire(ctx, itemsKey, a.r.ttl)
		}
		pipe.Publish(ctx, a.r.channel(a.scope), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (a *redisArea) RemoveItems(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	payload, err := a.payload(keys)
	if err != nil {
		return err
	}

	args := make([]any, 0, len(keys)+1)
	args = append(args, payload)
	for _, k := range keys {
		args = append(args, k)
	}

	err = removeItemsLua.Run(ctx, a.r.client, []string{a.r.itemsKey(a.scope), a.r.channel(a.scope)}, args...).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (a *redisArea) Changes(ctx context.Context) (<-chan Change, error) {
	sub := a.r.client.Subscribe(ctx, a.r.channel(a.scope))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out := make(chan Change, changeBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					a.r.log.Warn().Err(err).Str("channel", msg.Channel).Msg("storage: битое событие изменения")
					continue
				}
				if change.Origin == a.id {
					continue
				}

				select {
				case out <- change:
				default:
				}
			}
		}
	}()

	return out, nil
}

func (a *redisArea) payload(keys []string) (string, error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	data, err := json.Marshal(Change{Keys: sorted, Origin: a.id})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
