package sender

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

type mockSQS struct {
	sqsiface.SQSAPI
	err  error
	sent []*sqs.SendMessageInput
}

func (ms *mockSQS) SendMessageWithContext(_ aws.Context, in *sqs.SendMessageInput, _ ...request.Option) (*sqs.SendMessageOutput, error) {
	if ms.err != nil {
		return nil, ms.err
	}
	ms.sent = append(ms.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestNewMessage(t *testing.T) {

	tt := []struct {
		n    int
		want Message
	}{
		{n: 0, want: Message{ID: "id0000", Body: "This is message 0000."}},
		{n: 42, want: Message{ID: "id0042", Body: "This is message 0042."}},
		{n: 9999, want: Message{ID: "id9999", Body: "This is message 9999."}},
	}

	for _, tc := range tt {
		if diff := cmp.Diff(tc.want, NewMessage(tc.n)); diff != "" {
			t.Errorf("message %v mismatch (-want +got):\n%s", tc.n, diff)
		}
	}
}

func TestSend(t *testing.T) {

	tt := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "happy", status: 200, body: `{"id":"id0007"}`},
		{name: "unhappy", err: errors.New("queue does not exist"), status: 500,
			body: "could not publish message: queue does not exist"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {

			ms := &mockSQS{err: tc.err}
			s := NewSender(ms, "http://localstack:4566/000000000000/chapter07-queue", zerolog.Nop())
			s.intn = func(int) int { return 7 }

			res, err := s.Send(context.Background())
			if err != nil {
				t.Fatalf("Send returned an error: %v", err)
			}
			if res.StatusCode != tc.status {
				t.Errorf("expected status %v, got %v", tc.status, res.StatusCode)
			}
			if res.Body != tc.body {
				t.Errorf("expected body %v, got %v", tc.body, res.Body)
			}
			if tc.err != nil {
				return
			}

			if len(ms.sent) != 1 {
				t.Fatalf("expected one message, got %v", len(ms.sent))
			}
			in := ms.sent[0]
			if aws.StringValue(in.QueueUrl) != "http://localstack:4566/000000000000/chapter07-queue" {
				t.Errorf("unexpected queue url %v", aws.StringValue(in.QueueUrl))
			}
			msg := aws.StringValue(in.MessageBody)
			if got := gjson.Get(msg, "id").Str; got != "id0007" {
				t.Errorf("expected id0007, got %v", got)
			}
			if got := gjson.Get(msg, "body").Str; got != "This is message 0007." {
				t.Errorf("unexpected body %v", got)
			}
		})
	}
}

func TestSendRandomID(t *testing.T) {
	re := regexp.MustCompile(`^id\d{4}$`)
	ms := &mockSQS{}
	s := NewSender(ms, "q", zerolog.Nop())

	for i := 0; i < 50; i++ {
		res, _ := s.Send(context.Background())
		if id := gjson.Get(res.Body, "id").Str; !re.MatchString(id) {
			t.Errorf("unexpected id %q", id)
		}
	}
}
