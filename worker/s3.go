package worker

import (
	"text2phenotype.com/postag/s3client"
	"errors"
)

type s3Transactions interface {
	getInput(key string) ([]byte, error)
	savePredictions(key string, data []byte) error
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) getInput(key string) ([]byte, error) {
	return wrapper.s3Client.Download(key)
}

func (wrapper *s3ClientWrapper) savePredictions(key string, data []byte) error {
	_, err := wrapper.s3Client.Upload(data, key)
	return err
}

var errStorageDisabled = errors.New("S3 storage is disabled for this worker")

type disabledStorage struct{}

func (disabledStorage) close() {}

func (disabledStorage) getInput(string) ([]byte, error) {
	return nil, errStorageDisabled
}

func (disabledStorage) savePredictions(string, []byte) error {
	return errStorageDisabled
}
