package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/multisig"
)

// commands is a register of all available commands that can be executed
// by this program. The name is used to match with the first argument
// given.
//
// A command function is an independent runnable that takes stdin as input
// and stdout as output. Given args are the command line arguments without
// the program name and the command name, to be parsed using the flag
// package.
//
// Commands building a request write a JSON document that can be piped
// into the next command. For example, a call is authorized by two owners
// and executed with:
//
//   $ quorumd exec -instance 0 -target 7A27... -value 100 \
//       | quorumd sign -key alice.key \
//       | quorumd sign -key bob.key \
//       | quorumd submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"add-owner":        cmdAddOwner,
	"batch":            cmdBatch,
	"change-threshold": cmdChangeThreshold,
	"exec":             cmdExec,
	"init":             cmdInit,
	"keyaddr":          cmdKeyaddr,
	"keygen":           cmdKeygen,
	"query":            cmdQuery,
	"remove-owner":     cmdRemoveOwner,
	"replace-owner":    cmdReplaceOwner,
	"serve":            cmdServe,
	"sign":             cmdSign,
	"submit":           cmdSubmit,
	"validate":         cmdValidate,
	"version":          cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s manages multi signature quorum instances.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintf(out, "%s (execution rules %s)\n", quorum.Version(), multisig.Version)
	return err
}
