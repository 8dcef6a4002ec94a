package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

func cmdServe(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Serve the HTTP API of all instances kept in the state directory.

  GET  /instances                           list all instances
  GET  /instances/{index}                   describe an instance
  GET  /instances/{index}/owners/{address}  check an owner
  POST /instances/{index}/digest            digest of a request at the current nonce
  POST /instances/{index}/validate          check the signatures of a request
  POST /instances/{index}/submit            execute a signed request
  GET  /events                              events published since start
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
		httpFl = fl.String("http", env("QUORUM_HTTP", ":8000"),
			"Address the server listens on. You can use QUORUM_HTTP environment variable to set it.")
		logFl = fl.String("log", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, logger)
	if err != nil {
		return fmt.Errorf("cannot open state: %s", err)
	}
	defer n.Close()

	server := &http.Server{
		Addr:         *httpFl,
		Handler:      newAPI(n, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	failed := make(chan error, 1)
	go func() {
		logger.Info("serving", "address", *httpFl)
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("http server: %s", err)
	case <-stop:
	}
	return shutdown(server, logger)
}

func shutdown(server *http.Server, logger log.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %s", err)
	}
	return nil
}
