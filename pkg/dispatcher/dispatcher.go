// Package dispatcher maps an action named in a Lambda event onto object store
// operations and answers with an API Gateway style response.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
	"github.com/UKHomeOffice/bucketrelay/pkg/payload"
)

// Store is the object store the dispatcher drives
type Store interface {
	Put(ctx context.Context, key, content string, metadata map[string]string) objectstore.Result[objectstore.PutData]
	Get(ctx context.Context, key string) objectstore.Result[objectstore.GetData]
	Update(ctx context.Context, key, content string, metadata map[string]string) objectstore.Result[objectstore.PutData]
	List(ctx context.Context, prefix string) objectstore.Result[objectstore.ListData]
	Delete(ctx context.Context, key string) objectstore.Result[objectstore.DeleteData]
}

// Dispatcher handles action requests
type Dispatcher struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewDispatcher returns a new Dispatcher
func NewDispatcher(s Store, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: s, log: log, now: time.Now}
}

// Handle deals with an incoming event. It always answers with a well-formed
// response and never returns an error.
func (d *Dispatcher) Handle(ctx context.Context, event json.RawMessage) (res events.APIGatewayProxyResponse, err error) {

	defer func() {
		if r := recover(); r != nil {
			res = d.internalError(fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	p, perr := payload.Unwrap(event)
	if perr != nil {
		return d.internalError(perr), nil
	}

	action, perr := payload.String(p, "action", false, "test")
	if perr != nil {
		return d.internalError(perr), nil
	}
	d.log.Info().Str("action", action).Msg("performing action")

	env, perr := d.Dispatch(ctx, action, p)
	if perr != nil {
		return d.internalError(perr), nil
	}
	return d.respond(http.StatusOK, env), nil
}

// Dispatch runs action with its parsed payload. Unknown actions are not an
// error; a payload missing required fields is.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, p gjson.Result) (Envelope, error) {

	switch action {
	case "test":
		return Envelope{Success: true, Message: "Operation completed successfully", Data: d.runTest(ctx)}, nil
	case "upload":
		req, err := parseUpload(p, "")
		if err != nil {
			return Envelope{}, err
		}
		return d.upload(ctx, req), nil
	case "read":
		req, err := parseKey(p)
		if err != nil {
			return Envelope{}, err
		}
		return d.read(ctx, req), nil
	case "update":
		req, err := parseUpload(p, "")
		if err != nil {
			return Envelope{}, err
		}
		return d.update(ctx, req), nil
	case "list":
		req, err := parseList(p)
		if err != nil {
			return Envelope{}, err
		}
		return d.list(ctx, req), nil
	case "delete":
		req, err := parseKey(p)
		if err != nil {
			return Envelope{}, err
		}
		return d.remove(ctx, req), nil
	}

	d.log.Warn().Str("action", action).Msg("unknown action")
	return Envelope{Success: false, Message: fmt.Sprintf("Unknown action: %v", action)}, nil
}

func (d *Dispatcher) upload(ctx context.Context, r UploadRequest) Envelope {
	return fromResult(d.store.Put(ctx, r.Key, r.Content, r.Metadata), "File uploaded successfully", "Upload failed")
}

func (d *Dispatcher) read(ctx context.Context, r KeyRequest) Envelope {
	return fromResult(d.store.Get(ctx, r.Key), "File read successfully", "Read failed")
}

func (d *Dispatcher) update(ctx context.Context, r UploadRequest) Envelope {
	return fromResult(d.store.Update(ctx, r.Key, r.Content, r.Metadata), "File updated successfully", "Update failed")
}

func (d *Dispatcher) list(ctx context.Context, r ListRequest) Envelope {
	return fromResult(d.store.List(ctx, r.Prefix), "Files listed successfully", "List failed")
}

func (d *Dispatcher) remove(ctx context.Context, r KeyRequest) Envelope {
	return fromResult(d.store.Delete(ctx, r.Key), "File deleted successfully", "Delete failed")
}

// internalError logs the cause and hides it from the caller
func (d *Dispatcher) internalError(err error) events.APIGatewayProxyResponse {
	d.log.Error().Err(err).Msg("handler error")
	return d.respond(http.StatusInternalServerError, Envelope{Success: false, Message: "Internal server error"})
}
