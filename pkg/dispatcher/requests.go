package dispatcher

import (
	"github.com/tidwall/gjson"

	"github.com/UKHomeOffice/bucketrelay/pkg/payload"
)

// UploadRequest writes a new object (also used for update)
type UploadRequest struct {
	Key      string
	Content  string
	Metadata map[string]string
}

// KeyRequest names one object, for read and delete
type KeyRequest struct {
	Key string
}

// ListRequest lists objects under a prefix
type ListRequest struct {
	Prefix string
}

// parseUpload reads key, content and metadata. key falls back to
// defaultKey, which lets a REST path supply it.
func parseUpload(p gjson.Result, defaultKey string) (UploadRequest, error) {

	key, err := payload.String(p, "key", defaultKey == "", defaultKey)
	if err != nil {
		return UploadRequest{}, err
	}
	content, err := payload.String(p, "content", true, "")
	if err != nil {
		return UploadRequest{}, err
	}
	md, err := payload.StringMap(p, "metadata")
	if err != nil {
		return UploadRequest{}, err
	}
	return UploadRequest{Key: key, Content: content, Metadata: md}, nil
}

func parseKey(p gjson.Result) (KeyRequest, error) {
	key, err := payload.String(p, "key", true, "")
	if err != nil {
		return KeyRequest{}, err
	}
	return KeyRequest{Key: key}, nil
}

func parseList(p gjson.Result) (ListRequest, error) {
	prefix, err := payload.String(p, "prefix", false, "")
	if err != nil {
		return ListRequest{}, err
	}
	return ListRequest{Prefix: prefix}, nil
}
