package cache

import (
	"context"
	"encoding/json"
	"fmt"

	redisClient "github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "annot:"

// Redis is a shared cache backend for multi-instance deployments. Entries
// are stored as JSON without expiry (content-addressed, never invalidated).
type Redis struct {
	client *redisClient.Client
}

func NewRedis(redisURL string) (*Redis, error) {
	opt, err := redisClient.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redisClient.NewClient(opt)}, nil
}

func (r *Redis) Get(ctx context.Context, text, targetLang string) (Entry, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+Key(text, targetLang)).Bytes()
	if err != nil {
		if err == redisClient.Nil {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *Redis) Put(ctx context.Context, text, targetLang string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+Key(text, targetLang), data, 0).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
