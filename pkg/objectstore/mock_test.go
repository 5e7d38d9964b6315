package objectstore

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type storedObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// mockS3 is an in-memory bucket
type mockS3 struct {
	s3iface.S3API
	objects map[string]storedObject
	puts    int
	headErr error
	putErr  error
	listErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string]storedObject{}}
}

func etag(b []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(b)))
}

// canonical mimics the SDK handing metadata back as header keys
func canonical(m map[string]string) map[string]*string {
	out := map[string]*string{}
	for k, v := range m {
		out[http.CanonicalHeaderKey(k)] = aws.String(v)
	}
	return out
}

func noSuchKey() error {
	return awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil), http.StatusNotFound, "req-1")
}

func (m *mockS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	b, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.puts++
	m.objects[aws.StringValue(in.Key)] = storedObject{
		body:        b,
		contentType: aws.StringValue(in.ContentType),
		metadata:    aws.StringValueMap(in.Metadata),
		modified:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	return &s3.PutObjectOutput{ETag: aws.String(etag(b))}, nil
}

func (m *mockS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	o, ok := m.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, noSuchKey()
	}
	return &s3.GetObjectOutput{
		Body:          ioutil.NopCloser(bytes.NewReader(o.body)),
		ContentType:   aws.String(o.contentType),
		ContentLength: aws.Int64(int64(len(o.body))),
		ETag:          aws.String(etag(o.body)),
		LastModified:  aws.Time(o.modified),
		Metadata:      canonical(o.metadata),
	}, nil
}

func (m *mockS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	o, ok := m.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), http.StatusNotFound, "req-2")
	}
	return &s3.HeadObjectOutput{
		ContentType:   aws.String(o.contentType),
		ContentLength: aws.Int64(int64(len(o.body))),
		ETag:          aws.String(etag(o.body)),
		LastModified:  aws.Time(o.modified),
		Metadata:      canonical(o.metadata),
	}, nil
}

func (m *mockS3) ListObjectsV2WithContext(_ aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	keys := []string{}
	for k := range m.objects {
		if strings.HasPrefix(k, aws.StringValue(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{KeyCount: aws.Int64(int64(len(keys)))}
	for _, k := range keys {
		o := m.objects[k]
		out.Contents = append(out.Contents, &s3.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(o.body))),
			ETag:         aws.String(etag(o.body)),
			LastModified: aws.Time(o.modified),
		})
	}
	return out, nil
}

func (m *mockS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}
