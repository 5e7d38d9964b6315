// Package relay copies JSON messages from an SQS queue into an S3 bucket, one
// object per message keyed by the message's id.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/rs/zerolog"

	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
)

// ContentType of stored messages
const ContentType = "application/json"

// Queue is the part of an SQS client the poller needs
type Queue interface {
	ReceiveMessageWithContext(aws.Context, *sqs.ReceiveMessageInput, ...request.Option) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageWithContext(aws.Context, *sqs.DeleteMessageInput, ...request.Option) (*sqs.DeleteMessageOutput, error)
}

// Writer stores raw bytes
type Writer interface {
	Write(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) (objectstore.PutData, error)
}

// Options configures a Relay
type Options struct {
	QueueURL        string
	Prefix          string
	MaxMessages     int64
	WaitTimeSeconds int64
	// PartialBatch reports failed records individually instead of failing
	// the whole invocation. Only enable it when the event source mapping
	// has ReportBatchItemFailures set.
	PartialBatch bool
}

// Relay moves messages into the object store
type Relay struct {
	queue Queue
	store Writer
	opts  Options
	log   zerolog.Logger
}

// Summary reports what one Poll did
type Summary struct {
	Received int      `json:"received"`
	Stored   []string `json:"stored"`
}

// NewRelay returns a new Relay. q may be nil when only HandleEvent is used.
func NewRelay(q Queue, w Writer, o Options, log zerolog.Logger) *Relay {
	if o.MaxMessages < 1 || o.MaxMessages > 10 {
		o.MaxMessages = 10
	}
	return &Relay{queue: q, store: w, opts: o, log: log}
}

// save writes one message body to its key
func (r *Relay) save(ctx context.Context, body string) (string, error) {

	msg, err := ParseMessage(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse message: %w", err)
	}

	key := Key(r.opts.Prefix, msg.ID)
	if _, err := r.store.Write(ctx, key, []byte(msg.Raw), ContentType, nil); err != nil {
		return "", fmt.Errorf("failed to store message %v: %w", msg.ID, err)
	}
	return key, nil
}

// Poll receives one batch and stores each message in order, deleting it from
// the queue once stored. The first failure stops the batch; the failed message
// and the rest stay on the queue until their visibility timeout runs out.
func (r *Relay) Poll(ctx context.Context) (Summary, error) {

	if r.queue == nil {
		return Summary{}, fmt.Errorf("no queue configured")
	}

	out, err := r.queue.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.opts.QueueURL),
		MaxNumberOfMessages: aws.Int64(r.opts.MaxMessages),
		WaitTimeSeconds:     aws.Int64(r.opts.WaitTimeSeconds),
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to receive messages: %w", err)
	}

	sum := Summary{Received: len(out.Messages), Stored: []string{}}
	r.log.Debug().Int("count", sum.Received).Msg("received messages")

	for _, m := range out.Messages {
		id := aws.StringValue(m.MessageId)

		key, err := r.save(ctx, aws.StringValue(m.Body))
		if err != nil {
			return sum, fmt.Errorf("message %v: %w", id, err)
		}

		_, err = r.queue.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(r.opts.QueueURL),
			ReceiptHandle: m.ReceiptHandle,
		})
		if err != nil {
			return sum, fmt.Errorf("message %v stored at %v but not deleted: %w", id, key, err)
		}

		sum.Stored = append(sum.Stored, key)
		r.log.Info().Str("message_id", id).Str("key", key).Msg("received and processed message")
	}

	return sum, nil
}

// HandleEvent stores the records of a delivered batch in order. The first
// failure stops the batch and is returned, so the whole batch is redelivered.
// With PartialBatch set a bad record doesn't stop the others; its id is
// returned so only it is redelivered.
func (r *Relay) HandleEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {

	res := events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}

	for _, record := range event.Records {
		r.log.Debug().Str("message_id", record.MessageId).Str("body", record.Body).Msg("processing message")

		key, err := r.save(ctx, record.Body)
		if err != nil {
			r.log.Error().Err(err).Str("message_id", record.MessageId).Msg("message failed")
			if !r.opts.PartialBatch {
				return res, fmt.Errorf("message %v: %w", record.MessageId, err)
			}
			res.BatchItemFailures = append(res.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		r.log.Info().Str("message_id", record.MessageId).Str("key", key).Msg("message stored")
	}

	return res, nil
}

// Run polls until ctx is done, pausing interval between batches. Failed
// batches are logged and retried on the next round.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {

	if r.queue == nil {
		return fmt.Errorf("no queue configured")
	}
	if interval <= 0 {
		return fmt.Errorf("invalid poll interval: %v", interval)
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		sum, err := r.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			r.log.Error().Err(err).Int("stored", len(sum.Stored)).Msg("poll failed")
		case sum.Received > 0:
			r.log.Info().Int("received", sum.Received).Int("stored", len(sum.Stored)).Msg("batch done")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
