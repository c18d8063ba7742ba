package worker

import (
	"text2phenotype.com/postag/logger"
	"text2phenotype.com/postag/pos"
	"text2phenotype.com/postag/redis"
	"text2phenotype.com/postag/rmq"
	"text2phenotype.com/postag/s3client"
	"text2phenotype.com/postag/types"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

type Config struct {
	Shards       int    `envconfig:"POSTAG_WORKER_SHARDS" default:"4"`
	CacheEnabled bool   `envconfig:"POSTAG_WORKER_CACHE_ENABLED" default:"true"`
	S3Enabled    bool   `envconfig:"POSTAG_WORKER_S3_ENABLED" default:"true"`
	OutputPrefix string `envconfig:"POSTAG_WORKER_OUTPUT_PREFIX" default:"predictions"`
}

// Tagger is the trained model and the decoder the worker serves.
type Tagger struct {
	Model    *pos.Model
	Decoder  pos.Decoder
	Strategy types.Strategy
}

type Worker struct {
	config       Config
	cache        cacheTransactions
	s3           s3Transactions
	rmq          rmqTransactions
	workerLogger *zerolog.Logger
	tagger       Tagger
}

func New(tagger Tagger) (*Worker, error) {
	workerLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		workerLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := Worker{
		config:       config,
		workerLogger: &workerLogger,
		tagger:       tagger,
		cache:        disabledCache{},
		s3:           disabledStorage{},
	}
	if err := worker.refreshRMQClient(); err != nil {
		workerLogger.Error().Err(err).Msg("Could not create RMQ client")
		return nil, err
	}
	if config.S3Enabled {
		if err := worker.refreshS3Client(); err != nil {
			workerLogger.Error().Err(err).Msg("Could not create S3 client")
			worker.rmq.close()
			return nil, err
		}
	}
	if config.CacheEnabled {
		if err := worker.refreshRedisClient(); err != nil {
			workerLogger.Error().Err(err).Msg("Could not create Redis client")
			worker.Close()
			return nil, err
		}
	}
	return &worker, nil
}

func (worker *Worker) StartWorker() error {
	defer worker.Close()
	for {
		select {
		case delivery, ok := <-worker.rmq.getDeliveriesCh():
			if ok {
				go worker.processMessage(&delivery)
				continue
			}
			worker.workerLogger.Error().Msg("Deliveries channel closed, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"rmq deliveries channel has been closed and refresh returned error: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getRespChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.workerLogger.Err(rmqErr).Msg("Response connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"response connection received error and refresh failed with: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getReqChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.workerLogger.Err(rmqErr).Msg("Request connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"request connection received error and refresh failed with: %w",
					err,
				)
			}
		}
	}
}

func (worker *Worker) Close() {
	worker.cache.close()
	worker.s3.close()
	worker.rmq.close()
}

func (worker *Worker) refreshRedisClient() error {
	worker.workerLogger.Info().Msg("Refreshing Redis client")
	if oldClient := worker.cache; oldClient != nil {
		defer oldClient.close()
	}
	client, err := redis.NewClient()
	if err != nil {
		worker.workerLogger.Err(err).Msg("Failed to refresh Redis client")
		return err
	}
	worker.cache = &redisClientWrapper{client}
	worker.workerLogger.Info().Msg("Refreshed Redis client")
	return nil
}

func (worker *Worker) refreshRMQClient() error {
	worker.workerLogger.Info().Msg("Refreshing RMQ client")
	if oldClient := worker.rmq; oldClient != nil {
		defer oldClient.close()
	}
	rmqClient, err := rmq.NewClient()
	if err != nil {
		worker.workerLogger.Err(err).Msg("Failed to refresh RMQ client")
		return err
	}
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.workerLogger.Info().Msg("Refreshed RMQ client")
	return nil
}

func (worker *Worker) refreshS3Client() error {
	worker.workerLogger.Info().Msg("Refreshing S3 client")
	if oldClient := worker.s3; oldClient != nil {
		defer oldClient.close()
	}
	s3Client, err := s3client.New()
	if err != nil {
		worker.workerLogger.Err(err).Msg("Failed to refresh S3 client")
		return err
	}
	worker.s3 = &s3ClientWrapper{s3Client}
	worker.workerLogger.Info().Msg("Refreshed S3 client")
	return nil
}
