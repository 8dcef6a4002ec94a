/*
Package quorum defines the interfaces and types shared by all parts of the
multi-signature authorization engine: identities (Address and Condition),
storage, gas metering, events and genesis configuration.

The engine itself lives in x/multisig. It is assembled from the owner
registry (x/owners), the signature verifier (x/sigs) and is hosted by a
factory (x/factory) that keeps a directory of all instances. Values moved by
inner calls are accounted by x/ledger.

Request scoped data is passed through context.Context. For every value T
that is supported there are two functions:

  WithXYZ(context.Context, T) context.Context
  GetXYZ(context.Context) T  (or (T, bool) when there is no default)
*/
package quorum
