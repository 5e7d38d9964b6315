// Package sender publishes a numbered test message to SQS.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/rs/zerolog"
)

// Messenger is an abstraction for a SQS client
type Messenger interface {
	SendMessageWithContext(aws.Context, *sqs.SendMessageInput, ...request.Option) (*sqs.SendMessageOutput, error)
}

// Message is what gets published
type Message struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Sender publishes messages to one queue
type Sender struct {
	mgr      Messenger
	queueURL string
	log      zerolog.Logger
	intn     func(int) int
}

// NewSender returns a new Sender
func NewSender(m Messenger, queueURL string, log zerolog.Logger) *Sender {
	return &Sender{mgr: m, queueURL: queueURL, log: log, intn: rand.Intn}
}

// NewMessage numbers a message n
func NewMessage(n int) Message {
	return Message{
		ID:   fmt.Sprintf("id%04d", n),
		Body: fmt.Sprintf("This is message %04d.", n),
	}
}

// publish writes m to SQS
func (s *Sender) publish(ctx context.Context, m Message) error {

	sm, err := json.Marshal(&m)
	if err != nil {
		return fmt.Errorf("could not marshal SQS payload: %v", err)
	}

	_, err = s.mgr.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		MessageBody: aws.String(string(sm)),
		QueueUrl:    aws.String(s.queueURL),
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %v", err)
	}
	return nil
}

// Send publishes a message with a random number between 0 and 9999
func (s *Sender) Send(ctx context.Context) (events.APIGatewayProxyResponse, error) {

	m := NewMessage(s.intn(10000))

	err := s.publish(ctx, m)
	if err != nil {
		s.log.Error().Err(err).Str("id", m.ID).Msg("send failed")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       err.Error(),
		}, nil
	}
	s.log.Info().Str("id", m.ID).Msg("message sent")

	out, err := json.Marshal(map[string]string{"id": m.ID})
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       fmt.Sprintf("could not marshal response: %v", err),
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(out),
	}, nil
}
