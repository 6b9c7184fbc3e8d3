package redis

import (
	// Go Internal Packages
	"context"

	// Local Packages
	config "sms-ledger/config"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// Connect connects to the redis db and returns the client.
func Connect(ctx context.Context, conf config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.URI,
		Password: conf.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
