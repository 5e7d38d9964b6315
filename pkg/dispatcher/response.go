package dispatcher

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
)

// Language identifies this implementation in every response
const Language = "Go"

// Envelope is the JSON body of every response
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Language  string      `json:"language"`
	Timestamp string      `json:"timestamp"`
}

// fromResult wraps an operation result, picking the message by outcome
func fromResult[T any](r objectstore.Result[T], okMsg, failMsg string) Envelope {
	e := Envelope{Success: r.Success, Error: r.Error, Message: failMsg}
	if r.Success {
		e.Message = okMsg
	}
	// keep a nil pointer out of the interface so omitempty drops it
	if r.Data != nil {
		e.Data = r.Data
	}
	return e
}

func headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// respond stamps and encodes e
func (d *Dispatcher) respond(status int, e Envelope) events.APIGatewayProxyResponse {

	e.Language = Language
	e.Timestamp = d.now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(e)
	if err != nil {
		d.log.Error().Err(err).Msg("could not marshal response")
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"message":"Internal server error","language":"Go"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers(),
		Body:       string(body),
	}
}
