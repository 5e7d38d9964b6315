package relay

import (
	"path"

	"github.com/UKHomeOffice/bucketrelay/pkg/payload"
)

// Message is the part of a queued body the relay cares about
type Message struct {
	ID  string
	Raw string
}

// ParseMessage checks body is a JSON object with a string id
func ParseMessage(body string) (Message, error) {

	obj, err := payload.Object(body)
	if err != nil {
		return Message{}, err
	}

	id, err := payload.String(obj, "id", true, "")
	if err != nil {
		return Message{}, err
	}
	if id == "" {
		return Message{}, &payload.FieldError{Field: "id", Kind: payload.MissingField}
	}

	return Message{ID: id, Raw: body}, nil
}

// Key is where a message with id is stored
func Key(prefix, id string) string {
	return path.Join(prefix, id+".json")
}
