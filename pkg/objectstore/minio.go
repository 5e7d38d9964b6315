package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures a MinioBackend
type MinioOptions struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Transport overrides the HTTP transport, nil means the minio default
	Transport http.RoundTripper
}

// MinioBackend stores objects through the minio client, for S3 compatible
// services other than AWS itself
type MinioBackend struct {
	client *minio.Client
	bucket string
}

// NewMinioBackend returns a new MinioBackend. An empty endpoint means AWS S3.
func NewMinioBackend(o MinioOptions) (*MinioBackend, error) {

	host, secure, err := splitEndpoint(o.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(o.AccessKeyID, o.SecretAccessKey, ""),
		Secure:       secure,
		Region:       o.Region,
		BucketLookup: minio.BucketLookupPath,
		Transport:    o.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}
	return &MinioBackend{client: client, bucket: o.Bucket}, nil
}

// splitEndpoint turns an endpoint URL into the host and TLS flag minio wants
func splitEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "s3.amazonaws.com", true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("could not parse endpoint %q: %v", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// PutObject writes body under key and returns the new ETag
func (b *MinioBackend) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {

	info, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %v: %w", key, err)
	}
	return info.ETag, nil
}

// GetObject reads a whole object
func (b *MinioBackend) GetObject(ctx context.Context, key string) (*Object, error) {

	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %v: %w", key, minioNotFound(err))
	}
	defer obj.Close()

	// the request is only made on first read or stat
	st, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get object %v: %w", key, minioNotFound(err))
	}

	body, err := ioutil.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %v: %w", key, err)
	}

	info := fromMinio(st)
	info.Key = key
	return &Object{ObjectInfo: info, Body: body}, nil
}

// HeadObject reads an object's description without its payload
func (b *MinioBackend) HeadObject(ctx context.Context, key string) (*ObjectInfo, error) {

	st, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to head object %v: %w", key, minioNotFound(err))
	}
	info := fromMinio(st)
	info.Key = key
	return &info, nil
}

// ListObjects returns at most one page of keys under prefix. The minio client
// pages transparently, so stop at the same limit S3 applies.
func (b *MinioBackend) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})

	files := []ObjectInfo{}
	for o := range ch {
		if o.Err != nil {
			cancel()
			drain(ch)
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, o.Err)
		}
		files = append(files, fromMinio(o))
		if len(files) == pageLimit {
			cancel()
			drain(ch)
			break
		}
	}
	return files, nil
}

// drain lets the listing goroutine finish after its context is cancelled
func drain(ch <-chan minio.ObjectInfo) {
	for range ch {
	}
}

// DeleteObject removes key
func (b *MinioBackend) DeleteObject(ctx context.Context, key string) error {
	err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %v: %w", key, err)
	}
	return nil
}

func fromMinio(o minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          o.Key,
		Size:         o.Size,
		ETag:         o.ETag,
		ContentType:  o.ContentType,
		LastModified: o.LastModified,
		Metadata:     lowerKeys(o.UserMetadata),
	}
}

func minioNotFound(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
