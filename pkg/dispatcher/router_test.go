package dispatcher

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
)

func TestRoute(t *testing.T) {

	tt := []struct {
		name    string
		req     events.APIGatewayProxyRequest
		status  int
		success bool
		message string
	}{
		{
			name:    "get by path key",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "GET", PathParameters: map[string]string{"key": "seed.txt"}},
			status:  http.StatusOK,
			success: true,
			message: "File read successfully",
		},
		{
			name:    "get by query key",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "get", QueryStringParameters: map[string]string{"key": "seed.txt"}},
			status:  http.StatusOK,
			success: true,
			message: "File read successfully",
		},
		{
			name:    "get missing",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "GET", PathParameters: map[string]string{"key": "nope"}},
			status:  http.StatusOK,
			message: "Read failed",
		},
		{
			name:    "list",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "GET", QueryStringParameters: map[string]string{"prefix": "se"}},
			status:  http.StatusOK,
			success: true,
			message: "Files listed successfully",
		},
		{
			name:    "post",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: `{"key":"new.txt","content":"x"}`},
			status:  http.StatusOK,
			success: true,
			message: "File uploaded successfully",
		},
		{
			name:    "empty method is post",
			req:     events.APIGatewayProxyRequest{Body: `{"key":"new.txt","content":"x"}`},
			status:  http.StatusOK,
			success: true,
			message: "File uploaded successfully",
		},
		{
			name: "post base64",
			req: events.APIGatewayProxyRequest{
				HTTPMethod:      "POST",
				IsBase64Encoded: true,
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"key":"b.txt","content":"x"}`)),
			},
			status:  http.StatusOK,
			success: true,
			message: "File uploaded successfully",
		},
		{
			name:    "post without key",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: `{"content":"x"}`},
			status:  http.StatusBadRequest,
			message: "Bad request",
		},
		{
			name:    "post bad json",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: `{"content":`},
			status:  http.StatusBadRequest,
			message: "Bad request",
		},
		{
			name:    "post bad base64",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "POST", IsBase64Encoded: true, Body: "%%%"},
			status:  http.StatusBadRequest,
			message: "Bad request",
		},
		{
			name:    "put with path key",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "PUT", PathParameters: map[string]string{"key": "seed.txt"}, Body: `{"content":"v2"}`},
			status:  http.StatusOK,
			success: true,
			message: "File updated successfully",
		},
		{
			name:    "delete",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "DELETE", PathParameters: map[string]string{"key": "seed.txt"}},
			status:  http.StatusOK,
			success: true,
			message: "File deleted successfully",
		},
		{
			name:    "delete without key",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "DELETE"},
			status:  http.StatusBadRequest,
			message: "key is required for DELETE",
		},
		{
			name:    "patch",
			req:     events.APIGatewayProxyRequest{HTTPMethod: "PATCH"},
			status:  http.StatusMethodNotAllowed,
			message: "Method not allowed",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {

			d, _ := newTestDispatcher()
			d.store.Put(context.Background(), "seed.txt", "seed", nil)

			res, err := d.Route(context.Background(), tc.req)
			if err != nil {
				t.Fatalf("Route returned an error: %v", err)
			}
			if res.StatusCode != tc.status {
				t.Errorf("expected status %v, got %v: %v", tc.status, res.StatusCode, res.Body)
			}
			body := gjson.Parse(res.Body)
			if got := body.Get("success").Bool(); got != tc.success {
				t.Errorf("expected success %v, got %v", tc.success, got)
			}
			if got := body.Get("message").Str; got != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, got)
			}
		})
	}
}

func TestRouteBadRequestDetail(t *testing.T) {
	d, _ := newTestDispatcher()
	res, _ := d.Route(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: `{"key":"a"}`})
	if got := gjson.Get(res.Body, "error").Str; got != "missing field: content" {
		t.Errorf("unexpected error detail %q", got)
	}
}

func TestRouteMethodNotAllowed(t *testing.T) {
	d, _ := newTestDispatcher()
	res, _ := d.Route(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "patch"})

	var allowed []string
	for _, m := range gjson.Get(res.Body, "data.allowedMethods").Array() {
		allowed = append(allowed, m.Str)
	}
	if diff := cmp.Diff(AllowedMethods, allowed); diff != "" {
		t.Errorf("allowed methods mismatch (-want +got):\n%s", diff)
	}
	if got := gjson.Get(res.Body, "data.receivedMethod").Str; got != "PATCH" {
		t.Errorf("expected PATCH, got %q", got)
	}
}

func TestRoutePutMergesWithPathKey(t *testing.T) {
	ctx := context.Background()
	d, b := newTestDispatcher()
	d.store.Put(ctx, "doc.txt", "v1", map[string]string{"owner": "ops"})

	d.Route(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:     "PUT",
		PathParameters: map[string]string{"key": "doc.txt"},
		Body:           `{"content":"v2","metadata":{"rev":"2"}}`,
	})

	o := b.objects["doc.txt"]
	if string(o.Body) != "v2" {
		t.Errorf("expected v2, got %q", o.Body)
	}
	if diff := cmp.Diff(map[string]string{"owner": "ops", "rev": "2"}, o.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}
