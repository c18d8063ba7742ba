package worker

import (
	"text2phenotype.com/postag/redis"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type decoderMock struct {
	config decoderMockConfig
	calls  decoderCall
	tags   []string
}

type decoderMockConfig struct {
	panic bool
}

type decoderCall struct {
	decode bool
}

type cacheMock struct {
	config cacheMockConfig
	calls  cacheMockCalls
	saved  *redis.Result
}

type cacheMockConfig struct {
	getResult  withValue
	saveResult failingMethod
	lock       failingMethod
}

type cacheMockCalls struct {
	getResult   bool
	saveResult  bool
	lock        bool
	releaseLock bool
}

type rmqMock struct {
	config  rmqMockConfig
	calls   rmqMockCalls
	replied Reply
}

type rmqMockConfig struct {
	reply               failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	reply               bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config   s3MockConfig
	calls    s3MockCalls
	uploaded string
}

type s3MockConfig struct {
	getInput        withValue
	savePredictions failingMethod
}

type s3MockCalls struct {
	getInput        bool
	savePredictions bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *cacheMock) close() {}

// Decode tags every word with the same tag.
func (mock *decoderMock) Decode(words []string) []string {
	mock.calls.decode = true
	if mock.config.panic {
		panic("decoder exploded")
	}
	tags := make([]string, len(words))
	for i := range tags {
		tags[i] = mock.tags[0]
	}
	return tags
}

func (mock *cacheMock) getResult(key string) (*redis.Result, bool, error) {
	mock.calls.getResult = true
	if mock.config.getResult.fail {
		return nil, false, errors.New("failed to read cache")
	}
	switch value := mock.config.getResult.returnedValue.(type) {
	case redis.Result:
		return &value, true, nil
	default:
		return nil, false, nil
	}
}

func (mock *cacheMock) saveResult(key string, result *redis.Result) error {
	mock.calls.saveResult = true
	if mock.config.saveResult.fail {
		return errors.New("failed to write cache")
	}
	mock.saved = result
	return nil
}

func (mock *cacheMock) lock(key string) (redis.ReleaseLock, error) {
	mock.calls.lock = true
	if mock.config.lock.fail {
		return nil, errors.New("failed to obtain lock")
	}
	return func() error {
		mock.calls.releaseLock = true
		return nil
	}, nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, taskLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) reply(task *Task, reply Reply) error {
	mock.calls.reply = true
	if mock.config.reply.fail {
		return errors.New("failed to send reply")
	}
	mock.replied = reply
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getInput(key string) ([]byte, error) {
	mock.calls.getInput = true
	if mock.config.getInput.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch value := mock.config.getInput.returnedValue.(type) {
	case []byte:
		return value, nil
	default:
		return []byte("id,word\n0,-DOCSTART-\n1,the\n2,dog\n3,runs\n4,.\n"), nil
	}
}

func (mock *s3Mock) savePredictions(key string, data []byte) error {
	mock.calls.savePredictions = true
	if mock.config.savePredictions.fail {
		return errors.New("failed to upload predictions")
	}
	mock.uploaded = string(data)
	return nil
}
