package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/x/sigs"
)

func cmdSign(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given request. This is decoding a request from standard input, adds a
signature over its digest at the current nonce of the instance and writes back
to standard output the signed request.

Signatures are kept ordered by the signer address, as required by the
instance.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that request should be signed with. You can use QUORUM_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	env, err := readEnvelope(input)
	if err != nil {
		return err
	}

	n, err := openNode(*homeFl, quorum.DefaultLogger)
	if err != nil {
		return fmt.Errorf("cannot open state: %s", err)
	}
	defer n.Close()

	e, err := n.factory.Instance(env.Instance)
	if err != nil {
		return err
	}
	var digest []byte
	err = n.read(func(db quorum.KVStore) error {
		var err error
		digest, err = e.Digest(db, env.Request)
		return err
	})
	if err != nil {
		return fmt.Errorf("cannot compute digest: %s", err)
	}

	sig, err := key.Sign(digest)
	if err != nil {
		return fmt.Errorf("cannot sign request: %s", err)
	}
	sorted, err := sigs.SortSignatures(crypto.DefaultRecoverer(), digest, append(env.Signatures, sig))
	if err != nil {
		return fmt.Errorf("cannot order signatures, request changed since signed? %s", err)
	}
	env.Signatures = sorted
	return writeEnvelope(output, env)
}
