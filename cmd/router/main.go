// Function router serves REST style API Gateway requests through package dispatcher.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
	"github.com/UKHomeOffice/bucketrelay/internal/logger"
	"github.com/UKHomeOffice/bucketrelay/pkg/dispatcher"
	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
)

func main() {

	c, err := config.Load()
	if err != nil {
		l := logger.New(os.Stderr, "info", "json")
		l.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(os.Stdout, c.LogLevel, c.LogFormat).With().Str("function", "router").Logger()

	sess, err := awsclient.NewSession(c)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start session")
	}
	store, err := objectstore.NewFromConfig(c, sess, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build object store")
	}

	lambda.Start(dispatcher.NewDispatcher(store, log).Route)
}
