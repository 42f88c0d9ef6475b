package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// SettingsBus fans out governance-setting invalidations so every process
// re-reads e.g. the legal hold flag without polling the database.
type SettingsBus interface {
	PublishInvalidation(ctx context.Context, key string) error
	StartForwarder(ctx context.Context, onInvalidate func(key string)) error
	Close() error
}

type settingsBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewSettingsBus connects to REDIS_ADDR. Returns (nil, nil) when no address
// is configured; callers then fall back to reading settings straight from
// the database.
func NewSettingsBus(baseLog *logger.Logger) (SettingsBus, error) {
	addr := strings.TrimSpace(envutil.Str("REDIS_ADDR", ""))
	if addr == "" {
		return nil, nil
	}
	channel := envutil.Str("REDIS_SETTINGS_CHANNEL", "settings")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &settingsBus{
		log:     baseLog.With("service", "RedisSettingsBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *settingsBus) PublishInvalidation(ctx context.Context, key string) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("settings bus not initialized")
	}
	return b.rdb.Publish(ctx, b.channel, key).Err()
}

func (b *settingsBus) StartForwarder(ctx context.Context, onInvalidate func(key string)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("settings bus not initialized")
	}
	if onInvalidate == nil {
		return fmt.Errorf("onInvalidate callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				onInvalidate(m.Payload)
			}
		}
	}()
	return nil
}

func (b *settingsBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
