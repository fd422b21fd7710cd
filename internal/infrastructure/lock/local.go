package lock

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"

	"fantasy_trades/internal/domain"
	"fantasy_trades/pkg/errcodes"
)

// Local serializes runs inside one process. Entries expire after ttl so a
// lost unlock cannot block a dataset forever.
type Local struct {
	mu   sync.Mutex
	held *cache.Cache
	ttl  time.Duration
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{
		held: cache.New(ttl, ttl),
		ttl:  ttl,
	}
}

// Lock stores a per-run token under key. Unlock removes the entry only while
// it still holds that token, so a run that outlived ttl leaves its
// successor's lock alone.
func (l *Local) Lock(_ context.Context, key string) (func(), error) {
	token := xid.New().String()

	l.mu.Lock()
	err := l.held.Add(key, token, l.ttl)
	l.mu.Unlock()

	if err != nil {
		return nil, domain.Errorf(errcodes.RunInProgress, "another run holds %s", key)
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if held, ok := l.held.Get(key); ok && held == token {
			l.held.Delete(key)
		}
	}, nil
}
