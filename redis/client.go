package redis

import (
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
	"strconv"
	"time"
)

type ReleaseLock func() error

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
	lockRetries    int
	resultTTL      time.Duration
}

var ctx = context.Background()

var cacheLogger = logger.NewLogger("Redis cache")

type Config struct {
	LockExpirationSeconds   int     `envconfig:"POSTAG_REDIS_LOCK_EXPIRATION" default:"30"`
	LockRetries             int     `envconfig:"POSTAG_REDIS_LOCK_RETRIES" default:"20"`
	ResultTTLSeconds        int     `envconfig:"POSTAG_REDIS_RESULT_TTL" default:"86400"`
	Host                    string  `envconfig:"POSTAG_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"POSTAG_REDIS_PORT" default:"6379"`
	DB                      int     `envconfig:"POSTAG_REDIS_DB" default:"0"`
	HASentinelPort          string  `envconfig:"POSTAG_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"POSTAG_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"POSTAG_REDIS_AUTH_PASSWORD" default:""`
	AuthRequired            bool    `envconfig:"POSTAG_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"POSTAG_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"POSTAG_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

// Result is the cached outcome of tagging one request.
type Result struct {
	Fingerprint string     `json:"fingerprint"`
	Tags        [][]string `json:"tags"`
}

func NewClient() (*Client, error) {
	cfg, err := ReadEnvironment()
	if err != nil {
		return nil, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateClusterClient(cfg)
	} else {
		client = CreateClient(cfg)
	}
	return New(client, cfg), nil
}

// New wraps an existing connection.
func New(client redis.UniversalClient, cfg *Config) *Client {
	return &Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
		lockRetries:    cfg.LockRetries,
		resultTTL:      time.Duration(cfg.ResultTTLSeconds) * time.Second,
	}
}

func CreateClusterClient(cfg *Config) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            cfg.DB,
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg *Config) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         cfg.DB,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// Key identifies a tagging request: the model fingerprint, the decoding
// strategy and the sentences. Each sentence is prefixed with its length so
// that different splits of the same tokens get different keys.
func Key(fingerprint uint64, strategy string, sentences [][]string) string {
	parts := make([]string, 0, 16)
	for _, sent := range sentences {
		parts = append(parts, strconv.Itoa(len(sent)))
		parts = append(parts, sent...)
	}
	return fmt.Sprintf("postag:%016x:%s:%016x", fingerprint, strategy, utils.HashStrings(parts...))
}

// GetResult returns false when the key is not cached.
func (client *Client) GetResult(redisKey string) (*Result, bool, error) {
	response := client.client.Get(ctx, redisKey)
	if errors.Is(response.Err(), redis.Nil) {
		return nil, false, nil
	}
	if response.Err() != nil {
		return nil, false, response.Err()
	}
	b, err := response.Bytes()
	if err != nil {
		return nil, false, err
	}
	var result Result
	if err = json.Unmarshal(b, &result); err != nil {
		cacheLogger.Err(err).Str("key", redisKey).Msg("Dropping malformed cache entry")
		return nil, false, nil
	}
	return &result, true, nil
}

func (client *Client) SaveResult(redisKey string, result *Result) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return client.client.Set(ctx, redisKey, b, client.resultTTL).Err()
}

// Lock blocks until the key's lock is obtained or the retries run out.
func (client *Client) Lock(redisKey string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), client.lockRetries)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := lockCl.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) Close() error {
	return client.client.Close()
}

func ReadEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
