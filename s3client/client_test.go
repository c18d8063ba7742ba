package s3client

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
)

func TestReadEnvironment(t *testing.T) {
	os.Unsetenv("POSTAG_S3_BUCKET")
	_, err := ReadEnvironment()
	require.Error(t, err)

	os.Setenv("POSTAG_S3_BUCKET", "corpora")
	defer os.Unsetenv("POSTAG_S3_BUCKET")
	env, err := ReadEnvironment()
	require.NoError(t, err)
	require.Equal(t, "us-east-1", env.Region)
	require.Equal(t, 4, env.MaxRetries)
}

func TestAWSConfig(t *testing.T) {
	cfg, err := awsConfig(EnvironmentConfig{Region: "eu-west-1", MaxRetries: 2})
	require.NoError(t, err)
	require.Equal(t, "eu-west-1", aws.StringValue(cfg.Region))
	require.Equal(t, 2, aws.IntValue(cfg.MaxRetries))
	require.Nil(t, cfg.Credentials)
	require.Nil(t, cfg.Endpoint)

	cfg, err = awsConfig(EnvironmentConfig{
		Region:      "us-east-1",
		Endpoint:    "http://localhost:9000",
		AccessKeyID: "id",
		AccessKey:   "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", aws.StringValue(cfg.Endpoint))
	require.True(t, aws.BoolValue(cfg.S3ForcePathStyle))

	creds, err := cfg.Credentials.Get()
	require.NoError(t, err)
	require.Equal(t, "id", creds.AccessKeyID)
}
