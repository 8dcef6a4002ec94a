package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum/x/factory"
	"github.com/iov-one/quorum/x/multisig"
)

func cmdExec(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an unsigned request executing a single call on behalf of an instance.
`)
		fl.PrintDefaults()
	}
	var (
		instanceFl = fl.Uint64("instance", 0, "Index of the instance.")
		targetFl   = flAddress(fl, "target", "", "Address of the called contract or account.")
		valueFl    = fl.Uint64("value", 0, "Amount moved from the instance to the target.")
		payloadFl  = flHex(fl, "payload", "", "Hex encoded payload passed to the target contract.")
		gasFl      = fl.Int64("gas", 0, "Gas budget of the call. Zero grants all remaining gas.")
	)
	fl.Parse(args)

	c := multisig.Call{
		Target:    *targetFl,
		Value:     *valueFl,
		Payload:   *payloadFl,
		GasBudget: *gasFl,
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid call: %s", err)
	}
	return writeEnvelope(output, &envelope{
		Instance: *instanceFl,
		Request:  multisig.SingleRequest(c),
	})
}

func cmdBatch(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read unsigned requests of a single instance from standard input and combine
all their calls into a single batch request. Calls are executed in the order
of the input.

  $ (quorumd exec -target A -value 1; quorumd exec -target B -value 2) \
      | quorumd batch
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	envs, err := readEnvelopes(input)
	if err != nil {
		return err
	}
	batch := &envelope{Instance: envs[0].Instance}
	for i, env := range envs {
		if env.Instance != batch.Instance {
			return fmt.Errorf("request %d is for instance %d, not %d", i, env.Instance, batch.Instance)
		}
		if len(env.Signatures) != 0 {
			return fmt.Errorf("request %d is signed, only unsigned requests can be combined", i)
		}
		batch.Request.Calls = append(batch.Request.Calls, env.Request.Calls...)
	}
	batch.Request.Kind = multisig.KindBatch
	if err := batch.Request.Validate(); err != nil {
		return fmt.Errorf("invalid batch: %s", err)
	}
	return writeEnvelope(output, batch)
}

func cmdAddOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an unsigned request adding an owner to an instance.
`)
		fl.PrintDefaults()
	}
	var (
		instanceFl = fl.Uint64("instance", 0, "Index of the instance.")
		ownerFl    = flAddress(fl, "owner", "", "Address of the new owner.")
	)
	fl.Parse(args)

	if len(*ownerFl) == 0 {
		return errors.New("owner is required")
	}
	return writeAdminRequest(output, *instanceFl, multisig.AdminMsg{
		Method: multisig.MethodAddOwner,
		Owner:  *ownerFl,
	})
}

func cmdRemoveOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an unsigned request removing an owner from an instance.
`)
		fl.PrintDefaults()
	}
	var (
		instanceFl = fl.Uint64("instance", 0, "Index of the instance.")
		ownerFl    = flAddress(fl, "owner", "", "Address of the removed owner.")
	)
	fl.Parse(args)

	if len(*ownerFl) == 0 {
		return errors.New("owner is required")
	}
	return writeAdminRequest(output, *instanceFl, multisig.AdminMsg{
		Method: multisig.MethodRemoveOwner,
		Owner:  *ownerFl,
	})
}

func cmdReplaceOwner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an unsigned request replacing an owner of an instance.
`)
		fl.PrintDefaults()
	}
	var (
		instanceFl = fl.Uint64("instance", 0, "Index of the instance.")
		oldFl      = flAddress(fl, "old", "", "Address of the replaced owner.")
		newFl      = flAddress(fl, "new", "", "Address of the new owner.")
	)
	fl.Parse(args)

	if len(*oldFl) == 0 || len(*newFl) == 0 {
		return errors.New("both old and new owner are required")
	}
	return writeAdminRequest(output, *instanceFl, multisig.AdminMsg{
		Method:   multisig.MethodReplaceOwner,
		Owner:    *oldFl,
		NewOwner: *newFl,
	})
}

func cmdChangeThreshold(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create an unsigned request changing the threshold of an instance.
`)
		fl.PrintDefaults()
	}
	var (
		instanceFl  = fl.Uint64("instance", 0, "Index of the instance.")
		thresholdFl = fl.Uint("threshold", 0, "Number of signatures required by the instance.")
	)
	fl.Parse(args)

	return writeAdminRequest(output, *instanceFl, multisig.AdminMsg{
		Method:    multisig.MethodChangeThreshold,
		Threshold: uint32(*thresholdFl),
	})
}

func writeAdminRequest(output io.Writer, instance uint64, msg multisig.AdminMsg) error {
	c, err := multisig.AdminCall(factory.InstanceAddress(instance), msg)
	if err != nil {
		return fmt.Errorf("cannot encode %s call: %s", msg.Method, err)
	}
	return writeEnvelope(output, &envelope{
		Instance: instance,
		Request:  multisig.SingleRequest(c),
	})
}
