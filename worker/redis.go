package worker

import (
	"text2phenotype.com/postag/redis"
)

type cacheTransactions interface {
	getResult(key string) (*redis.Result, bool, error)
	saveResult(key string, result *redis.Result) error
	lock(key string) (redis.ReleaseLock, error)
	close()
}

type redisClientWrapper struct {
	client *redis.Client
}

func (wrapper *redisClientWrapper) close() {
	_ = wrapper.client.Close()
}

func (wrapper *redisClientWrapper) getResult(key string) (*redis.Result, bool, error) {
	return wrapper.client.GetResult(key)
}

func (wrapper *redisClientWrapper) saveResult(key string, result *redis.Result) error {
	return wrapper.client.SaveResult(key, result)
}

func (wrapper *redisClientWrapper) lock(key string) (redis.ReleaseLock, error) {
	return wrapper.client.Lock(key)
}

// disabledCache never hits and locks nothing.
type disabledCache struct{}

func (disabledCache) close() {}

func (disabledCache) getResult(string) (*redis.Result, bool, error) {
	return nil, false, nil
}

func (disabledCache) saveResult(string, *redis.Result) error {
	return nil
}

func (disabledCache) lock(string) (redis.ReleaseLock, error) {
	return func() error { return nil }, nil
}
