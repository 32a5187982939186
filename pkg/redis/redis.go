package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Config struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// Connect returns nil without error when the cache is disabled.
func Connect(config Config, log *zap.Logger) (*redis.Client, error) {
	if !config.Enabled {
		log.Info("redis disabled, image cache off")
		return nil, nil
	}

	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     100,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	fields := []zap.Field{zap.String("addr", addr)}
	if info, err := client.Info(ctx, "server").Result(); err == nil {
		if version, ok := infoValue(info, "redis_version"); ok {
			fields = append(fields, zap.String("version", version))
		}
	}
	log.Info("redis connected", fields...)

	return client, nil
}

func infoValue(info, key string) (string, bool) {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		k, v, found := strings.Cut(line, ":")
		if found && k == key {
			return v, true
		}
	}
	return "", false
}
