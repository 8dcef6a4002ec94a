package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/quorum/crypto"
	"github.com/stellar/go/exp/crypto/derivation"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

An ed25519 key can be derived from a hex encoded seed, optionally using a
derivation path, for example "m/44'/234'/0'".
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use QUORUM_PRIV_KEY environment variable to set it.")
		schemeFl = fl.String("scheme", "secp256k1", "Signature scheme of the key. Either secp256k1 or ed25519.")
		seedFl   = flHex(fl, "seed", "", "Hex encoded seed of an ed25519 key.")
		pathFl   = fl.String("derivation", "", "Derivation path used with the seed.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	key, err := keygen(*schemeFl, *seedFl, *pathFl)
	if err != nil {
		return err
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(crypto.MarshalPrivateKey(key)); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

// keygen returns a new key of given scheme. Only ed25519 keys can be
// created from a seed.
func keygen(scheme string, seed []byte, path string) (crypto.PrivateKey, error) {
	switch scheme {
	case "secp256k1":
		if len(seed) != 0 || path != "" {
			return nil, errors.New("seed and derivation are supported only for ed25519 keys")
		}
		return crypto.GenSecp256k1Key()
	case "ed25519":
		if len(seed) == 0 {
			if path != "" {
				return nil, errors.New("derivation requires a seed")
			}
			return crypto.GenEd25519Key()
		}
		if path != "" {
			k, err := derivation.DeriveForPath(path, seed)
			if err != nil {
				return nil, fmt.Errorf("cannot derive key using path %q: %s", path, err)
			}
			seed = k.Key
		}
		return crypto.Ed25519KeyFromSeed(seed)
	default:
		return nil, fmt.Errorf("unknown signature scheme %q", scheme)
	}
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the hex and the bech32 address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use QUORUM_PRIV_KEY environment variable to set it.")
		hrpFl = fl.String("hrp", "quorum", "Human readable part of the bech32 address.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	addr := key.Address()
	bech, err := addr.Bech32(*hrpFl)
	if err != nil {
		return fmt.Errorf("cannot serialize to bech32: %s", err)
	}
	_, err = fmt.Fprintf(output, "%s\n%s\n", addr, bech)
	return err
}

func decodePrivateKey(filepath string) (crypto.PrivateKey, error) {
	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q file: %s", filepath, err)
	}
	key, err := crypto.UnmarshalPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode private key: %s", err)
	}
	return key, nil
}
