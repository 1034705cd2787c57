// README: Driver availability pool backed by a Redis set.
package dispatch

import (
	"context"

	"github.com/redis/go-redis/v9"

	"swiftdrop/internal/types"
)

const onlineDriversKey = "dispatch:drivers:online"

type Pool struct {
	redis *redis.Client
}

func NewPool(redis *redis.Client) *Pool {
	return &Pool{redis: redis}
}

func (p *Pool) SetAvailability(ctx context.Context, driverID types.ID, online bool) error {
	if online {
		return p.redis.SAdd(ctx, onlineDriversKey, string(driverID)).Err()
	}
	return p.redis.SRem(ctx, onlineDriversKey, string(driverID)).Err()
}

// NextAvailable picks one online driver at random. No bidding or proximity
// ranking is modeled; dispatch commits a single driver per order.
func (p *Pool) NextAvailable(ctx context.Context) (types.ID, bool, error) {
	v, err := p.redis.SRandMember(ctx, onlineDriversKey).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return types.ID(v), true, nil
}

func (p *Pool) OnlineCount(ctx context.Context) (int64, error) {
	return p.redis.SCard(ctx, onlineDriversKey).Result()
}
