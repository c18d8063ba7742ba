package s3client

import (
	"text2phenotype.com/postag/logger"
	"bytes"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Client keeps one AWS session alive in a background goroutine and
// refreshes it when a request fails.
type Client struct {
	holder *sessionHolder
	env    EnvironmentConfig
}

type sessionHolder struct {
	curr      *session.Session
	requestCh <-chan *session.Session
	errorCh   chan<- error
	closeCh   chan<- struct{}
}

type EnvironmentConfig struct {
	BucketName  string `envconfig:"POSTAG_S3_BUCKET" required:"true"`
	Region      string `envconfig:"POSTAG_S3_REGION" default:"us-east-1"`
	Endpoint    string `envconfig:"POSTAG_S3_ENDPOINT" default:""`
	AccessKeyID string `envconfig:"POSTAG_S3_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"POSTAG_S3_ACCESS_KEY" default:""`
	MaxRetries  int    `envconfig:"POSTAG_S3_MAX_RETRIES" default:"4"`
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

func New() (*Client, error) {
	env, err := ReadEnvironment()
	if err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := Client{env: env}

	sessionCh := make(chan *session.Session)
	errorCh := make(chan error)
	closeCh := make(chan struct{}, 1)
	client.holder = &sessionHolder{
		requestCh: sessionCh,
		errorCh:   errorCh,
		closeCh:   closeCh,
	}
	if err := client.acquireNewSession(); err != nil {
		return nil, err
	}
	go keepSessionRefreshed(&client, sessionCh, errorCh, closeCh)
	return &client, nil
}

func (client Client) Bucket() string {
	return client.env.BucketName
}

// Upload stores data under key and returns the object location.
func (client Client) Upload(data []byte, key string) (string, error) {
	var location string
	err := client.withSession(func(sess *session.Session) error {
		out, err := client.upload(sess, key, data)
		if err != nil {
			return err
		}
		location = out.Location
		return nil
	})
	return location, err
}

func (client Client) Download(key string) ([]byte, error) {
	var data []byte
	err := client.withSession(func(sess *session.Session) error {
		var err error
		data, err = client.download(sess, key)
		return err
	})
	return data, err
}

func (client Client) Close() {
	client.holder.closeCh <- struct{}{}
}

// withSession runs op once and, if it fails, once more on a refreshed session.
func (client Client) withSession(op func(sess *session.Session) error) error {
	sess, err := client.session()
	if err != nil {
		return err
	}
	if err = op(sess); err == nil {
		return nil
	}
	sess, err = client.tryRefreshingSession(err)
	if err != nil {
		return err
	}
	return op(sess)
}

func (client Client) objectLoggers(key string) (zerolog.Logger, zerolog.Logger) {
	own := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	sdk := sdkLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
	return own, sdk
}

func (client Client) upload(sess *session.Session, key string, data []byte) (*s3manager.UploadOutput, error) {
	own, sdk := client.objectLoggers(key)
	uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: &s3Logger{sdk}}))
	own.Debug().Int("bytes", len(data)).Msg("Uploading file")
	return uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
}

func (client Client) download(sess *session.Session, key string) ([]byte, error) {
	own, sdk := client.objectLoggers(key)
	downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: &s3Logger{sdk}}))
	buf := aws.NewWriteAtBuffer([]byte{})

	own.Debug().Msg("Downloading file")
	size, err := downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(client.env.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		own.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	own.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

func keepSessionRefreshed(client *Client, sessionCh chan<- *session.Session, errorCh <-chan error, closeCh <-chan struct{}) {
	for {
		select {
		case sessionCh <- client.holder.curr:
			continue
		default:
		}
		select {
		case sessionCh <- client.holder.curr:
		case err := <-errorCh:
			clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
			if err = client.acquireNewSession(); err != nil {
				clientLogger.Error().Err(err).Msg("Caught error while refreshing S3 session")
				continue
			}
			clientLogger.Info().Msg("Successfully refreshed session")
		case <-closeCh:
			clientLogger.Info().Msg("Closing client")
			return
		}
	}
}

func (client Client) tryRefreshingSession(err error) (*session.Session, error) {
	var sess *session.Session
	select {
	case client.holder.errorCh <- err:
		sess = <-client.holder.requestCh
	case sess = <-client.holder.requestCh:
	}
	if sess == nil {
		return nil, errors.New("failed to refresh session")
	}
	return sess, nil
}

func (client Client) session() (*session.Session, error) {
	sess := <-client.holder.requestCh
	if sess == nil {
		return nil, errors.New("could not get session")
	}
	return sess, nil
}

// awsConfig builds the session config. Without static credentials the SDK
// falls back to the instance role.
func awsConfig(env EnvironmentConfig) (*aws.Config, error) {
	cfg := aws.NewConfig().
		WithRegion(env.Region).
		WithMaxRetries(env.MaxRetries).
		WithLogLevel(aws.LogDebug)

	if len(env.AccessKeyID) > 0 {
		creds := credentials.NewStaticCredentials(env.AccessKeyID, env.AccessKey, "")
		if _, err := creds.Get(); err != nil {
			return nil, fmt.Errorf("static credentials: %w", err)
		}
		cfg = cfg.WithCredentials(creds)
	}
	if len(env.Endpoint) > 0 {
		cfg = cfg.WithEndpoint(env.Endpoint).WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

func (client *Client) acquireNewSession() error {
	cfg, err := awsConfig(client.env)
	if err != nil {
		client.holder.curr = nil
		clientLogger.Error().Err(err).Msg("Invalid S3 configuration")
		return err
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		client.holder.curr = nil
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return err
	}
	// Custom endpoints (minio, localstack) usually have no STS.
	if len(client.env.Endpoint) == 0 {
		if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
			client.holder.curr = nil
			clientLogger.Error().Err(err).Msg("Could not verify S3 session identity")
			return fmt.Errorf("could not initialize S3 session: %w", err)
		}
	}
	client.holder.curr = sess
	clientLogger.Info().Str("region", client.env.Region).Msg("S3 session successfully initialized")
	return nil
}

func ReadEnvironment() (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	return config, err
}

type s3Logger struct {
	sdkLogger zerolog.Logger
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.sdkLogger.Debug().Msg(fmt.Sprint(v...))
}
