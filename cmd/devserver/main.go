// Command devserver serves the dispatcher over HTTP for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
	"github.com/UKHomeOffice/bucketrelay/internal/logger"
	"github.com/UKHomeOffice/bucketrelay/pkg/devserver"
	"github.com/UKHomeOffice/bucketrelay/pkg/dispatcher"
	"github.com/UKHomeOffice/bucketrelay/pkg/objectstore"
)

func main() {

	c, err := config.Load()
	if err != nil {
		l := logger.New(os.Stderr, "info", "console")
		l.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(os.Stderr, c.LogLevel, c.LogFormat)

	sess, err := awsclient.NewSession(c)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start session")
	}
	store, err := objectstore.NewFromConfig(c, sess, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build object store")
	}

	h := devserver.NewHandler(dispatcher.NewDispatcher(store, log), log)
	srv := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", c.ListenAddr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
