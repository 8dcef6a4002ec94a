package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Declare errors upfront so that DeepEqual can be used for comparison.
	var (
		emptyOwnersErr   = Field("Owners", ErrEmpty, "at least one owner")
		zeroOwnerErr     = Field("Owners.1", ErrInvalidInput, "zero identity")
		thresholdErr     = Field("Threshold", ErrInvalidInput, "must be greater than zero")
		registryMultiErr = Field("Registry", Append(
			zeroOwnerErr,
			thresholdErr,
		), "registry invalid")
	)

	cases := map[string]struct {
		Err   error
		Field string
		Want  []error
	}{
		"a single error found by the name": {
			Err:   emptyOwnersErr,
			Field: "Owners",
			Want:  []error{emptyOwnersErr},
		},
		"field can contain a multierror": {
			Err:   registryMultiErr,
			Field: "Registry",
			Want:  []error{registryMultiErr},
		},
		"field can inspect errors tree to find match": {
			Err:   registryMultiErr,
			Field: "Threshold",
			Want:  []error{thresholdErr},
		},
		"nil error returns nothing": {
			Err:   nil,
			Field: "Owners",
			Want:  nil,
		},
		"unknown field returns nothing": {
			Err:   Append(emptyOwnersErr, thresholdErr),
			Field: "Nonce",
			Want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := FieldErrors(tc.Err, tc.Field)
			if !reflect.DeepEqual(tc.Want, got) {
				t.Fatalf("want %v, got %v", tc.Want, got)
			}
		})
	}
}

func TestFieldNilError(t *testing.T) {
	if err := Field("Name", nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := AppendField(nil, "Name", nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}
