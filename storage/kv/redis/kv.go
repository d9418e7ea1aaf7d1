package redis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/classb/rollcall/core"
)

// KV stores each key as a plain redis string.
type KV struct {
	client *redis.Client
}

var _ core.KV = (*KV)(nil)

func New(conf *core.Config) (*KV, error) {
	client := redis.NewClient(&redis.Options{
		Addr: conf.Storage.RedisAddr,
		DB:   conf.Storage.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return &KV{client: client}, nil
}

func (kv *KV) Close() error { return kv.client.Close() }

func (kv *KV) Get(key string) (string, error) {
	val, err := kv.client.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return "", core.ErrKeyAbsent
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading key %q", key)
	}
	return val, nil
}

func (kv *KV) Set(key, value string) error {
	if err := kv.client.Set(context.Background(), key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "writing key %q", key)
	}
	return nil
}

func (kv *KV) Keys(prefix string) ([]string, error) {
	var keys []string
	iter := kv.client.Scan(context.Background(), 0, prefix+"*", 0).Iterator()
	for iter.Next(context.Background()) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "listing keys")
	}
	return keys, nil
}
