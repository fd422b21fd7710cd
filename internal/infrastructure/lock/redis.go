package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"fantasy_trades/internal/domain"
	"fantasy_trades/pkg/contextx"
	"fantasy_trades/pkg/errcodes"
	"fantasy_trades/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const keyPrefix = "fantasy_trades:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another run is left alone.
//
//nolint:gochecknoglobals
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis serializes runs across processes sharing one Redis database.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := xid.New().String()

	ok, err := r.client.SetNX(ctx, keyPrefix+key, token, r.ttl).Result()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to acquire run lock")
	}

	if !ok {
		return nil, domain.Errorf(errcodes.RunInProgress, "another run holds %s", key)
	}

	return func() {
		err := releaseScript.Run(context.WithoutCancel(ctx), r.client, []string{keyPrefix + key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger(ctx).Error("failed to release run lock", slog.String(logx.FieldDataset, key), logx.Error(err))
		}
	}, nil
}
