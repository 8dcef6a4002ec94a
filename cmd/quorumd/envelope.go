package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/quorum/x/multisig"
	"github.com/tendermint/tendermint/libs/log"
)

// envelope is the document passed between commands of a pipeline. It
// carries the request of an instance together with the signatures
// collected so far.
type envelope struct {
	Instance   uint64           `json:"instance"`
	Request    multisig.Request `json:"request"`
	Signatures [][]byte         `json:"signatures,omitempty"`
}

func writeEnvelope(w io.Writer, env *envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("cannot serialize request: %s", err)
	}
	return nil
}

func readEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("no input data")
		}
		return nil, fmt.Errorf("cannot deserialize request: %s", err)
	}
	return &env, nil
}

// readEnvelopes reads all documents from the input stream.
func readEnvelopes(r io.Reader) ([]*envelope, error) {
	dec := json.NewDecoder(r)
	var all []*envelope
	for {
		var env envelope
		switch err := dec.Decode(&env); {
		case err == io.EOF:
			if len(all) == 0 {
				return nil, fmt.Errorf("no input data")
			}
			return all, nil
		case err != nil:
			return nil, fmt.Errorf("cannot deserialize request %d: %s", len(all), err)
		}
		all = append(all, &env)
	}
}

// newLogger returns a logger writing to stderr all messages of at least
// given level.
func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}
