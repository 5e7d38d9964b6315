// Package objectstore reads and writes objects in a single bucket and reports
// every outcome as a Result rather than an error.
package objectstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ContentType used by Put and Update
const ContentType = "text/plain"

// Result is the envelope every Store operation returns. Check Success before using Data.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PutData describes a write
type PutData struct {
	Key  string `json:"key"`
	ETag string `json:"etag"`
	Size int64  `json:"size"`
}

// GetData is a read object
type GetData struct {
	Key          string            `json:"key"`
	Content      string            `json:"content"`
	Metadata     map[string]string `json:"metadata"`
	ContentType  string            `json:"contentType"`
	LastModified string            `json:"lastModified,omitempty"`
}

// HeadData is an object's description
type HeadData struct {
	Key          string            `json:"key"`
	Metadata     map[string]string `json:"metadata"`
	ContentType  string            `json:"contentType"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	LastModified string            `json:"lastModified,omitempty"`
}

// FileInfo is one listed object
type FileInfo struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified,omitempty"`
	ETag         string `json:"etag"`
}

// ListData is a listing
type ListData struct {
	Folder string     `json:"folder"`
	Count  int        `json:"count"`
	Files  []FileInfo `json:"files"`
}

// DeleteData names a deleted key
type DeleteData struct {
	Key string `json:"key"`
}

// Store is an object store client bound to one bucket
type Store struct {
	backend Backend
	log     zerolog.Logger
}

// NewStore returns a new Store
func NewStore(b Backend, log zerolog.Logger) *Store {
	return &Store{backend: b, log: log}
}

func ok[T any](d T) Result[T] {
	return Result[T]{Success: true, Data: &d}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Error: err.Error()}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Write stores body as-is. Unlike the other operations it returns an error,
// for callers that must stop on failure.
func (s *Store) Write(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (PutData, error) {

	if metadata == nil {
		metadata = map[string]string{}
	}

	etag, err := s.backend.PutObject(ctx, key, body, contentType, metadata)
	if err != nil {
		return PutData{}, err
	}
	s.log.Debug().Str("key", key).Int("size", len(body)).Msg("object written")
	return PutData{Key: key, ETag: etag, Size: int64(len(body))}, nil
}

// Put writes content as text, replacing any existing object at key
func (s *Store) Put(ctx context.Context, key, content string, metadata map[string]string) Result[PutData] {
	d, err := s.Write(ctx, key, []byte(content), ContentType, metadata)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("put failed")
		return fail[PutData](err)
	}
	return ok(d)
}

// Get reads an object
func (s *Store) Get(ctx context.Context, key string) Result[GetData] {
	o, err := s.backend.GetObject(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("get failed")
		return fail[GetData](err)
	}
	return ok(GetData{
		Key:          key,
		Content:      string(o.Body),
		Metadata:     o.Metadata,
		ContentType:  o.ContentType,
		LastModified: stamp(o.LastModified),
	})
}

// Head describes an object without fetching it
func (s *Store) Head(ctx context.Context, key string) Result[HeadData] {
	i, err := s.backend.HeadObject(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("head failed")
		return fail[HeadData](err)
	}
	return ok(HeadData{
		Key:          key,
		Metadata:     i.Metadata,
		ContentType:  i.ContentType,
		Size:         i.Size,
		ETag:         i.ETag,
		LastModified: stamp(i.LastModified),
	})
}

// Update replaces the content at key, keeping existing metadata and laying
// the given metadata over it. A missing object is treated as having none;
// any other failure reading the old metadata aborts the update.
func (s *Store) Update(ctx context.Context, key, content string, metadata map[string]string) Result[PutData] {

	merged := map[string]string{}

	i, err := s.backend.HeadObject(ctx, key)
	switch {
	case err == nil:
		for k, v := range i.Metadata {
			merged[k] = v
		}
	case errors.Is(err, ErrNotFound):
		s.log.Debug().Str("key", key).Msg("no existing object, nothing to merge")
	default:
		s.log.Error().Err(err).Str("key", key).Msg("could not read existing metadata")
		return fail[PutData](err)
	}

	for k, v := range metadata {
		merged[k] = v
	}

	return s.Put(ctx, key, content, merged)
}

// List returns the first page of objects under prefix
func (s *Store) List(ctx context.Context, prefix string) Result[ListData] {

	objs, err := s.backend.ListObjects(ctx, prefix)
	if err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("list failed")
		return fail[ListData](err)
	}

	files := make([]FileInfo, 0, len(objs))
	for _, o := range objs {
		files = append(files, FileInfo{
			Key:          o.Key,
			Size:         o.Size,
			LastModified: stamp(o.LastModified),
			ETag:         o.ETag,
		})
	}
	return ok(ListData{Folder: prefix, Count: len(files), Files: files})
}

// Delete removes key. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key string) Result[DeleteData] {
	if err := s.backend.DeleteObject(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("delete failed")
		return fail[DeleteData](err)
	}
	return ok(DeleteData{Key: key})
}
