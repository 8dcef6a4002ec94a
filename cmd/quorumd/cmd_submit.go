package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
)

func cmdValidate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Check whether the signatures of given request authorize it at the current
state of the instance. Nothing is executed.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
	)
	fl.Parse(args)

	env, err := readEnvelope(input)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, quorum.DefaultLogger)
	if err != nil {
		return fmt.Errorf("cannot open state: %s", err)
	}
	defer n.Close()

	var res *validation
	if err := n.read(func(db quorum.KVStore) error {
		var err error
		res, err = n.validate(db, env)
		return err
	}); err != nil {
		return err
	}
	if err := writeJSON(output, res); err != nil {
		return err
	}
	if !res.Valid {
		return errors.New("signatures do not authorize the request")
	}
	return nil
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute given signed request and commit the result. The receipt is written to
standard output.

A request that is not authorized is rejected and nothing is committed. Once
authorized, the nonce of the instance is consumed even if some calls fail.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
		gasFl = fl.Int64("gas", 0, "Gas available to the request. Zero means unlimited.")
		logFl = fl.String("log", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	env, err := readEnvelope(input)
	if err != nil {
		return err
	}
	logger, err := newLogger(*logFl)
	if err != nil {
		return err
	}
	n, err := openNode(*homeFl, logger)
	if err != nil {
		return fmt.Errorf("cannot open state: %s", err)
	}
	defer n.Close()

	ctx := context.Background()
	if *gasFl > 0 {
		ctx = quorum.WithGasMeter(ctx, quorum.NewGasMeter(*gasFl))
	}
	receipt, err := n.submit(ctx, env)
	if err != nil {
		return fmt.Errorf("request rejected: %s", err)
	}
	return writeJSON(output, receipt)
}
