package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
)

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the current state of an instance. When an owner is given, print out
only whether that address is an owner of the instance.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"State directory. You can use QUORUM_HOME environment variable to set it.")
		instanceFl = fl.Uint64("instance", 0, "Index of the instance.")
		ownerFl    = flAddress(fl, "owner", "", "Optional address to check the membership of.")
	)
	fl.Parse(args)

	n, err := openNode(*homeFl, quorum.DefaultLogger)
	if err != nil {
		return fmt.Errorf("cannot open state: %s", err)
	}
	defer n.Close()

	return n.read(func(db quorum.KVStore) error {
		if len(*ownerFl) != 0 {
			e, err := n.factory.Instance(*instanceFl)
			if err != nil {
				return err
			}
			ok, err := e.IsOwner(db, *ownerFl)
			if err != nil {
				return err
			}
			return writeJSON(output, ownership{Owner: *ownerFl, IsOwner: ok})
		}
		info, err := n.describe(db, *instanceFl)
		if err != nil {
			return err
		}
		return writeJSON(output, info)
	})
}

type ownership struct {
	Owner   quorum.Address `json:"owner"`
	IsOwner bool           `json:"is_owner"`
}
