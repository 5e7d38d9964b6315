// Command poller drains an SQS queue into the object store through package relay.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
	"github.com/UKHomeOffice/bucketrelay/internal/logger"
	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
	"github.com/UKHomeOffice/bucketrelay/pkg/relay"
)

func main() {

	app := &cli.App{
		Name:  "poller",
		Usage: "Copy queued JSON messages into the bucket",
		Commands: []*cli.Command{
			{
				Name:  "poll",
				Usage: "Receive messages and store each under <prefix>/<id>.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "queue-url",
						Usage:   "SQS queue URL",
						EnvVars: []string{"QUEUE_URL"},
					},
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "key prefix for stored messages",
						EnvVars: []string{"KEY_PREFIX"},
					},
					&cli.BoolFlag{
						Name:  "once",
						Usage: "poll a single batch, print its summary and exit",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "pause between batches",
						Value: 5 * time.Second,
					},
					&cli.StringFlag{
						Name:    "log-level",
						Usage:   "Log level (debug, info, warn, error)",
						EnvVars: []string{"LOG_LEVEL"},
					},
				},
				Action: poll,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		l := logger.New(os.Stderr, "info", "console")
		l.Fatal().Err(err).Msg("poller failed")
	}
}

func poll(cc *cli.Context) error {

	c, err := config.Load()
	if err != nil {
		return err
	}
	if cc.IsSet("queue-url") {
		c.QueueURL = cc.String("queue-url")
	}
	if cc.IsSet("prefix") {
		c.KeyPrefix = cc.String("prefix")
	}
	if cc.IsSet("log-level") {
		c.LogLevel = cc.String("log-level")
	}
	if err := c.RequireQueue(); err != nil {
		return err
	}

	log := logger.New(os.Stderr, c.LogLevel, c.LogFormat).With().Str("function", "poller").Logger()

	r, err := newRelay(c, log)
	if err != nil {
		return err
	}

	// shutdown on ctrl-c or the SIGTERM docker sends
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cc.Bool("once") {
		sum, err := r.Poll(ctx)
		out, merr := json.Marshal(sum)
		if merr != nil {
			return fmt.Errorf("could not marshal summary: %w", merr)
		}
		fmt.Fprintln(cc.App.Writer, string(out))
		return err
	}

	log.Info().Str("queue", c.QueueURL).Dur("interval", cc.Duration("interval")).Msg("starting poller")
	if err := r.Run(ctx, cc.Duration("interval")); err != nil {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}

func newRelay(c *config.Config, log zerolog.Logger) (*relay.Relay, error) {

	sess, err := awsclient.NewSession(c)
	if err != nil {
		return nil, err
	}
	store, err := objectstore.NewFromConfig(c, sess, log)
	if err != nil {
		return nil, err
	}

	return relay.NewRelay(awsclient.NewSQS(sess), store, relay.Options{
		QueueURL:        c.QueueURL,
		Prefix:          c.KeyPrefix,
		MaxMessages:     c.MaxMessages,
		WaitTimeSeconds: c.WaitTimeSeconds,
	}, log), nil
}
