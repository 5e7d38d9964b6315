// Function relay stores the messages of an SQS trigger batch through package relay.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
	"github.com/UKHomeOffice/bucketrelay/internal/logger"
	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
	"github.com/UKHomeOffice/bucketrelay/pkg/relay"
)

func main() {

	c, err := config.Load()
	if err != nil {
		l := logger.New(os.Stderr, "info", "json")
		l.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(os.Stdout, c.LogLevel, c.LogFormat).With().Str("function", "relay").Logger()

	sess, err := awsclient.NewSession(c)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start session")
	}
	store, err := objectstore.NewFromConfig(c, sess, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build object store")
	}

	// the trigger delivers messages itself, so no queue client is needed
	r := relay.NewRelay(nil, store, relay.Options{Prefix: c.KeyPrefix, PartialBatch: c.PartialBatch}, log)
	lambda.Start(r.HandleEvent)
}
