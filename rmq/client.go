package rmq

import (
	"text2phenotype.com/postag/logger"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Config struct {
	Host                    string `envconfig:"POSTAG_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"POSTAG_RMQ_PORT" default:"5672"`
	Username                string `envconfig:"POSTAG_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"POSTAG_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"POSTAG_RMQ_EXCHANGE" default:"postag-exchange"`
	MaxParallelRequestCount int    `envconfig:"POSTAG_RMQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TagQueue                string `envconfig:"POSTAG_RMQ_TAG_QUEUE" default:"postag-requests"`
	ReplyQueue              string `envconfig:"POSTAG_RMQ_REPLY_QUEUE" default:"postag-replies"`
	DeclareQueues           bool   `envconfig:"POSTAG_RMQ_DECLARE_QUEUES" default:"false"`
}

// Client owns two connections: one consuming tagging requests and one
// publishing replies, so a blocked publisher does not stall consumption.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	rmqLogger      *zerolog.Logger
}

func ReadEnvironment() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

func NewClient() (*Client, error) {
	rmqLogger := logger.NewLogger("RMQ client")
	config, err := ReadEnvironment()
	if err != nil {
		rmqLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}

	q, err := declare(reqChannel, config.TagQueue, config.DeclareQueues)
	if err != nil {
		return nil, err
	}
	if config.DeclareQueues {
		if _, err = declare(respChannel, config.ReplyQueue, true); err != nil {
			return nil, err
		}
	}
	if len(config.Exchange) > 0 {
		if err := reqChannel.QueueBind(q.Name, q.Name, config.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind %s: %w", q.Name, err)
		}
	}
	if err := reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	rmqLogger.Info().Str("queue", q.Name).Int("prefetch", config.MaxParallelRequestCount).Msg("Consuming tagging requests")

	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		rmqLogger:      &rmqLogger,
	}, nil
}

// ReplyRoute picks the routing key for a reply: the request's reply-to
// queue when the sender set one, the configured reply queue otherwise.
func (c *Client) ReplyRoute(replyTo string) string {
	return replyRoute(c.config, replyTo)
}

func (c *Client) Publish(routingKey string, msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func replyRoute(config Config, replyTo string) string {
	if len(replyTo) > 0 {
		return replyTo
	}
	return config.ReplyQueue
}

func declare(ch *amqp.Channel, name string, create bool) (amqp.Queue, error) {
	if create {
		return ch.QueueDeclare(
			name,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
	}
	return ch.QueueDeclarePassive(name, true, false, false, false, nil)
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
