package dispatcher

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"

	"github.com/UKHomeOffice/bucketrelay/pkg/payload"
)

// AllowedMethods are the methods Route understands
var AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// Route serves REST style proxy requests:
//
//	GET    /{key}  read
//	GET    /       list (?prefix=)
//	POST   /       upload
//	PUT    /{key}  update
//	DELETE /{key}  delete
func (d *Dispatcher) Route(ctx context.Context, req events.APIGatewayProxyRequest) (res events.APIGatewayProxyResponse, err error) {

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("path", req.Path).Msg("router panic")
			res = d.respond(http.StatusInternalServerError, Envelope{Message: "Internal routing error"})
			err = nil
		}
	}()

	method := strings.ToUpper(req.HTTPMethod)
	if method == "" {
		method = http.MethodPost
	}
	key := req.PathParameters["key"]
	if key == "" {
		key = req.QueryStringParameters["key"]
	}

	d.log.Info().Str("method", method).Str("path", req.Path).Str("key", key).Msg("routing request")

	switch method {
	case http.MethodGet:
		if key != "" {
			return d.respond(http.StatusOK, d.read(ctx, KeyRequest{Key: key})), nil
		}
		return d.respond(http.StatusOK, d.list(ctx, ListRequest{Prefix: req.QueryStringParameters["prefix"]})), nil

	case http.MethodPost, http.MethodPut:
		body, perr := requestBody(req)
		if perr != nil {
			return d.badRequest(perr), nil
		}
		up, perr := parseUpload(body, key)
		if perr != nil {
			return d.badRequest(perr), nil
		}
		if method == http.MethodPost {
			return d.respond(http.StatusOK, d.upload(ctx, up)), nil
		}
		return d.respond(http.StatusOK, d.update(ctx, up)), nil

	case http.MethodDelete:
		if key == "" {
			return d.respond(http.StatusBadRequest, Envelope{
				Message: "key is required for DELETE",
				Error:   "provide key as a path or query parameter",
			}), nil
		}
		return d.respond(http.StatusOK, d.remove(ctx, KeyRequest{Key: key})), nil
	}

	return d.respond(http.StatusMethodNotAllowed, Envelope{
		Message: "Method not allowed",
		Data: map[string]interface{}{
			"allowedMethods": AllowedMethods,
			"receivedMethod": method,
		},
	}), nil
}

func requestBody(req events.APIGatewayProxyRequest) (gjson.Result, error) {
	if !req.IsBase64Encoded {
		return payload.Object(req.Body)
	}
	raw, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return gjson.Result{}, &payload.FieldError{Field: "body", Kind: payload.InvalidJSON}
	}
	return payload.Object(string(raw))
}

func (d *Dispatcher) badRequest(err error) events.APIGatewayProxyResponse {
	d.log.Warn().Err(err).Msg("bad request")
	return d.respond(http.StatusBadRequest, Envelope{Message: "Bad request", Error: err.Error()})
}
