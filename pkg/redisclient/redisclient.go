package redisclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

// RedisClient wraps go-redis with a connection check on construction.
type RedisClient struct {
	connAttempts int
	connTimeout  time.Duration

	addr     string
	password string
	db       int

	Client *redis.Client
}

func New(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisClient, error) {
	rc := &RedisClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		addr:         addr,
		password:     password,
		db:           db,
	}

	for _, opt := range opts {
		opt(rc)
	}

	rc.Client = redis.NewClient(&redis.Options{
		Addr:     rc.addr,
		Password: rc.password,
		DB:       rc.db,
	})

	var err error
	for rc.connAttempts > 0 {
		err = rc.Client.Ping(ctx).Err()
		if err == nil {
			break
		}

		log.Printf("Redis is trying to connect, attempts left: %d", rc.connAttempts)

		time.Sleep(rc.connTimeout)

		rc.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("RedisClient - New - connAttempts == 0: %w", err)
	}

	return rc, nil
}

func (rc *RedisClient) Close() error {
	if rc.Client != nil {
		return rc.Client.Close()
	}
	return nil
}
