package objectstore

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {

	tt := []struct {
		name     string
		endpoint string
		host     string
		secure   bool
		err      bool
	}{
		{name: "emulator", endpoint: "http://localstack:4566", host: "localstack:4566"},
		{name: "tls", endpoint: "https://s3.eu-west-2.amazonaws.com", host: "s3.eu-west-2.amazonaws.com", secure: true},
		{name: "aws default", endpoint: "", host: "s3.amazonaws.com", secure: true},
		{name: "no scheme", endpoint: "localstack:4566", err: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			host, secure, err := splitEndpoint(tc.endpoint)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.host, host)
			assert.Equal(t, tc.secure, secure)
		})
	}
}

func TestMinioNotFound(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound, Message: "The specified key does not exist."}
	assert.True(t, errors.Is(minioNotFound(missing), ErrNotFound))

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden, Message: "Access Denied."}
	assert.False(t, errors.Is(minioNotFound(denied), ErrNotFound))
}

func TestNewMinioBackend(t *testing.T) {
	b, err := NewMinioBackend(MinioOptions{
		Endpoint:        "http://localstack:4566",
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Bucket:          "chapter07-bucket",
	})
	require.NoError(t, err)
	assert.Equal(t, "chapter07-bucket", b.bucket)
	assert.Equal(t, "localstack:4566", b.client.EndpointURL().Host)

	var _ Backend = b
}

func TestFromMinio(t *testing.T) {
	info := fromMinio(minio.ObjectInfo{
		Key:          "chapter07/id0001.json",
		Size:         12,
		ETag:         "abc",
		UserMetadata: minio.StringMap{"Upload-Time": "now"},
	})
	assert.Equal(t, map[string]string{"upload-time": "now"}, info.Metadata)
	assert.Equal(t, int64(12), info.Size)
}
