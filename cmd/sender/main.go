// Function sender starts a SQS session and hands over to package sender.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
	"github.com/UKHomeOffice/bucketrelay/internal/logger"
	"github.com/UKHomeOffice/bucketrelay/pkg/sender"
)

func main() {

	c, err := config.Load()
	if err == nil {
		err = c.RequireQueue()
	}
	if err != nil {
		l := logger.New(os.Stderr, "info", "json")
		l.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(os.Stdout, c.LogLevel, c.LogFormat).With().Str("function", "sender").Logger()

	sess, err := awsclient.NewSession(c)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start session")
	}

	lambda.Start(sender.NewSender(awsclient.NewSQS(sess), c.QueueURL, log).Send)
}
