// Package reward keeps running reward totals per user.
package reward

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
)

const (
	fieldTotalSaved    = "total_saved"
	fieldTotalInvested = "total_invested"
	fieldTargetsBeaten = "targets_beaten"
	fieldInvestments   = "investments"
	fieldBestStreak    = "best_streak"
	fieldFirstInvested = "first_invested"
)

// setMax stores ARGV[2] in field ARGV[1] of KEYS[1] when it exceeds the current value.
var setMax = redis.NewScript(`
local current = tonumber(redis.call("HGET", KEYS[1], ARGV[1]) or "0")
local candidate = tonumber(ARGV[2])
if candidate > current then
  redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
  return candidate
end
return current
`)

// RedisRecorder implements adapter.RewardRecorder with one Redis hash per user.
type RedisRecorder struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRecorder creates a new RedisRecorder.
func NewRedisRecorder(client redis.UniversalClient) *RedisRecorder {
	return &RedisRecorder{client: client, prefix: "own-instead:rewards:"}
}

func (r *RedisRecorder) key(userID uuid.UUID) string {
	return r.prefix + userID.String()
}

// OnTargetBeaten adds saved to the user's total and raises the best streak.
func (r *RedisRecorder) OnTargetBeaten(ctx context.Context, userID uuid.UUID, saved decimal.Decimal, streak int) error {
	key := r.key(userID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrByFloat(ctx, key, fieldTotalSaved, saved.InexactFloat64())
		pipe.HIncrBy(ctx, key, fieldTargetsBeaten, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record beaten target: %w", err)
	}

	if err := setMax.Run(ctx, r.client, []string{key}, fieldBestStreak, streak).Err(); err != nil {
		return fmt.Errorf("failed to record streak: %w", err)
	}
	return nil
}

// OnInvestmentFilled adds amount to the user's invested total.
func (r *RedisRecorder) OnInvestmentFilled(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, isFirst bool) error {
	key := r.key(userID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrByFloat(ctx, key, fieldTotalInvested, amount.InexactFloat64())
		pipe.HIncrBy(ctx, key, fieldInvestments, 1)
		if isFirst {
			pipe.HSetNX(ctx, key, fieldFirstInvested, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record investment: %w", err)
	}
	return nil
}

// Stats returns the user's totals. Users without events get zeros.
func (r *RedisRecorder) Stats(ctx context.Context, userID uuid.UUID) (*adapter.RewardStats, error) {
	values, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reward stats: %w", err)
	}

	return &adapter.RewardStats{
		TotalSaved:    money(values[fieldTotalSaved]),
		TotalInvested: money(values[fieldTotalInvested]),
		TargetsBeaten: count(values[fieldTargetsBeaten]),
		Investments:   count(values[fieldInvestments]),
		BestStreak:    count(values[fieldBestStreak]),
		FirstInvested: values[fieldFirstInvested] != "",
	}, nil
}

func money(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		slog.Warn("Invalid reward amount in store", "value", s)
		return decimal.Zero
	}
	return d.Round(2)
}

func count(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var _ adapter.RewardRecorder = (*RedisRecorder)(nil)
