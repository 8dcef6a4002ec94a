package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/factory"
	"github.com/iov-one/quorum/x/ledger"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Initialize the state from a genesis file read from standard input.

The genesis file declares instances under the "multisig" key and initial
balances under the "ledger" key:

  {
    "multisig": [{"name": "treasury", "owners": ["<hex>", ...], "threshold": 2}],
    "ledger": [{"address": "<hex>", "amount": 1000}]
  }

Instance addresses are derived from their position in the list. The state
directory must be empty.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
		logFl = fl.String("log", "info", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read genesis: %s", err)
	}
	if len(raw) == 0 {
		return errors.New("no input data")
	}
	var opts quorum.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("cannot deserialize genesis: %s", err)
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

	if latest, err := n.commit.LatestVersion(); err != nil {
		return err
	} else if latest.Version != 0 {
		return fmt.Errorf("state in %q already initialized at height %d", *homeFl, latest.Version)
	}

	inits := quorum.ChainInitializers{
		&factory.Initializer{Factory: n.factory},
		ledger.Initializer{},
	}
	_, err = n.update(context.Background(), func(ctx context.Context, db quorum.KVStore) error {
		return inits.FromGenesis(opts, db)
	})
	if err != nil {
		return fmt.Errorf("cannot initialize state: %s", err)
	}

	var records []factory.Record
	err = n.read(func(db quorum.KVStore) error {
		var err error
		records, err = n.factory.Records(db)
		return err
	})
	if err != nil {
		return err
	}
	return writeJSON(output, records)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}
