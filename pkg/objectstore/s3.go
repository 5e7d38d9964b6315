package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3API is the part of the S3 client the backend uses (helpful for testing)
type S3API interface {
	PutObjectWithContext(aws.Context, *s3.PutObjectInput, ...request.Option) (*s3.PutObjectOutput, error)
	GetObjectWithContext(aws.Context, *s3.GetObjectInput, ...request.Option) (*s3.GetObjectOutput, error)
	HeadObjectWithContext(aws.Context, *s3.HeadObjectInput, ...request.Option) (*s3.HeadObjectOutput, error)
	ListObjectsV2WithContext(aws.Context, *s3.ListObjectsV2Input, ...request.Option) (*s3.ListObjectsV2Output, error)
	DeleteObjectWithContext(aws.Context, *s3.DeleteObjectInput, ...request.Option) (*s3.DeleteObjectOutput, error)
}

// S3Backend stores objects in one S3 bucket
type S3Backend struct {
	s3     S3API
	bucket string
}

// NewS3Backend returns a new S3Backend
func NewS3Backend(api S3API, bucket string) *S3Backend {
	return &S3Backend{s3: api, bucket: bucket}
}

// PutObject writes body under key and returns the new ETag
func (b *S3Backend) PutObject(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (string, error) {

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    aws.StringMap(metadata),
	}

	out, err := b.s3.PutObjectWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to put object %v: %w", key, err)
	}
	return aws.StringValue(out.ETag), nil
}

// GetObject reads a whole object
func (b *S3Backend) GetObject(ctx context.Context, key string) (*Object, error) {

	out, err := b.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %v: %w", key, wrapNotFound(err))
	}
	defer out.Body.Close()

	body, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %v: %w", key, err)
	}

	return &Object{
		ObjectInfo: ObjectInfo{
			Key:          key,
			Size:         int64(len(body)),
			ETag:         aws.StringValue(out.ETag),
			ContentType:  aws.StringValue(out.ContentType),
			LastModified: aws.TimeValue(out.LastModified),
			Metadata:     lowerKeys(aws.StringValueMap(out.Metadata)),
		},
		Body: body,
	}, nil
}

// HeadObject reads an object's description without its payload
func (b *S3Backend) HeadObject(ctx context.Context, key string) (*ObjectInfo, error) {

	out, err := b.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to head object %v: %w", key, wrapNotFound(err))
	}

	return &ObjectInfo{
		Key:          key,
		Size:         aws.Int64Value(out.ContentLength),
		ETag:         aws.StringValue(out.ETag),
		ContentType:  aws.StringValue(out.ContentType),
		LastModified: aws.TimeValue(out.LastModified),
		Metadata:     lowerKeys(aws.StringValueMap(out.Metadata)),
	}, nil
}

// ListObjects returns the first page of keys under prefix
func (b *S3Backend) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		MaxKeys: aws.Int64(pageLimit),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	out, err := b.s3.ListObjectsV2WithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
	}

	files := make([]ObjectInfo, 0, len(out.Contents))
	for _, o := range out.Contents {
		files = append(files, ObjectInfo{
			Key:          aws.StringValue(o.Key),
			Size:         aws.Int64Value(o.Size),
			ETag:         aws.StringValue(o.ETag),
			LastModified: aws.TimeValue(o.LastModified),
		})
	}
	return files, nil
}

// DeleteObject removes key. S3 doesn't complain about missing keys.
func (b *S3Backend) DeleteObject(ctx context.Context, key string) error {

	_, err := b.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %v: %w", key, err)
	}
	return nil
}

// wrapNotFound attaches ErrNotFound to missing key errors. HEAD responses
// have no body so they only carry a 404 status.
func wrapNotFound(err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	if rerr, ok := err.(awserr.RequestFailure); ok && rerr.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
