package worker

import (
	"text2phenotype.com/postag/corpus"
	"text2phenotype.com/postag/evaluation"
	"text2phenotype.com/postag/redis"
	"text2phenotype.com/postag/types"
	"text2phenotype.com/postag/utils"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"strconv"
)

// Message is a tagging request. Sentences carries tokenized input inline;
// InputKey names an id,word CSV in the bucket instead, and the predictions
// are then written back as an id,tag CSV.
type Message struct {
	RequestID string     `json:"request_id"`
	Sentences [][]string `json:"sentences,omitempty"`
	InputKey  string     `json:"input_key,omitempty"`
	Sender    string     `json:"sender,omitempty"`
}

type Reply struct {
	RequestID   string     `json:"request_id"`
	Sender      string     `json:"sender"`
	Strategy    string     `json:"strategy"`
	Sentences   int        `json:"sentences"`
	Cached      bool       `json:"cached"`
	Tags        [][]string `json:"tags,omitempty"`
	OutputKey   string     `json:"output_key,omitempty"`
	Error       string     `json:"error,omitempty"`
	CompletedAt string     `json:"completed_at"`
}

type Task struct {
	delivery   *amqp.Delivery
	message    *Message
	taskLogger *zerolog.Logger
}

var errInvalidRequest = errors.New("invalid tagging request")

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	rejectLogger := worker.workerLogger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(delivery)
	if err != nil {
		worker.workerLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	reply, err := worker.processTask(task)
	if errors.Is(err, errInvalidRequest) {
		task.taskLogger.Warn().Err(err).Msg("Replying with error for invalid request")
		reply.Error = err.Error()
	} else if err != nil {
		task.taskLogger.Err(err).Msg("Got error while processing task")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	reply.CompletedAt = getFormattedNow()
	if err = worker.rmq.reply(task, reply); err != nil {
		task.taskLogger.Err(err).Msg("Got error while sending reply")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.taskLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.taskLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	if len(message.RequestID) == 0 {
		message.RequestID = delivery.MessageId
	}
	if len(message.RequestID) == 0 {
		message.RequestID = strconv.FormatUint(utils.HashStrings(string(delivery.Body)), 16)
	}
	taskLogger := worker.workerLogger.With().Str("request_id", message.RequestID).Logger()
	return &Task{
		delivery:   delivery,
		message:    &message,
		taskLogger: &taskLogger,
	}, nil
}

func (worker *Worker) processTask(task *Task) (reply Reply, err error) {
	defer utils.RecoverWithError(&err)
	reply = Reply{
		RequestID: task.message.RequestID,
		Sender:    "postag",
		Strategy:  string(worker.tagger.Strategy),
	}

	sentences, err := worker.resolveInput(task)
	if err != nil {
		return reply, err
	}
	reply.Sentences = len(sentences)
	task.taskLogger.Info().Int("sentences", len(sentences)).Int("tokens", sentences.NumTokens()).Msg("Tagging request")

	tags, cached, err := worker.tag(task, sentences)
	if err != nil {
		return reply, err
	}
	reply.Cached = cached

	if len(task.message.InputKey) == 0 {
		reply.Tags = tags
		return reply, nil
	}
	var buf bytes.Buffer
	if err = corpus.WritePredictions(&buf, sentences, tags); err != nil {
		return reply, err
	}
	outputKey := getOutputKey(worker.config.OutputPrefix, task)
	if err = worker.s3.savePredictions(outputKey, buf.Bytes()); err != nil {
		task.taskLogger.Err(err).Str("key", outputKey).Msg("Got error while trying to save predictions")
		return reply, fmt.Errorf("failed to save predictions: %w", err)
	}
	reply.OutputKey = outputKey
	return reply, nil
}

func (worker *Worker) resolveInput(task *Task) (types.Corpus, error) {
	message := task.message
	if len(message.InputKey) == 0 {
		if len(message.Sentences) == 0 {
			return nil, fmt.Errorf("%w: neither sentences nor input key given", errInvalidRequest)
		}
		return types.NewCorpus(message.Sentences, nil)
	}
	data, err := worker.s3.getInput(message.InputKey)
	if err != nil {
		task.taskLogger.Err(err).Caller().Msg("Could not fetch input from s3")
		return nil, fmt.Errorf("failed fetch data from s3: %w", err)
	}
	sentences, err := corpus.ReadCSV(bytes.NewReader(data), nil, worker.tagger.Model.Config.Corpus.DocStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return sentences, nil
}

// tag serves from the cache when possible. Concurrent workers receiving the
// same request serialize on the cache lock so only one of them decodes.
// Cache failures degrade to decoding without the cache.
func (worker *Worker) tag(task *Task, sentences types.Corpus) ([][]string, bool, error) {
	fingerprint := worker.tagger.Model.Fingerprint()
	key := redis.Key(fingerprint, string(worker.tagger.Strategy), sentences.Words())
	keyLogger := task.taskLogger.With().Str("cache_key", key).Logger()

	if tags, ok := worker.cachedTags(key, &keyLogger); ok {
		return tags, true, nil
	}

	release, err := worker.cache.lock(key)
	if err != nil {
		keyLogger.Warn().Err(err).Msg("Could not obtain cache lock, decoding anyway")
	} else {
		defer func() {
			if err := release(); err != nil {
				keyLogger.Warn().Err(err).Msg("Failed to release cache lock")
			}
		}()
		if tags, ok := worker.cachedTags(key, &keyLogger); ok {
			return tags, true, nil
		}
	}

	tags, err := evaluation.Predict(worker.tagger.Decoder, sentences, worker.config.Shards)
	if err != nil {
		return nil, false, err
	}
	result := &redis.Result{Fingerprint: strconv.FormatUint(fingerprint, 16), Tags: tags}
	if err := worker.cache.saveResult(key, result); err != nil {
		keyLogger.Warn().Err(err).Msg("Failed to cache tags")
	}
	return tags, false, nil
}

func (worker *Worker) cachedTags(key string, keyLogger *zerolog.Logger) ([][]string, bool) {
	result, ok, err := worker.cache.getResult(key)
	if err != nil {
		keyLogger.Warn().Err(err).Msg("Cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	keyLogger.Debug().Msg("Cache hit")
	return result.Tags, true
}
