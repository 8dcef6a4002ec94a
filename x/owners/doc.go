/*
Package owners implements the owner registry of a multi-signature
instance: a set of identities authorized to co-sign actions together with
the threshold of signatures required to authorize one.

The registry never reaches a state where the threshold is greater than the
number of owners, or where there are no owners at all. Mutations that
would violate this are rejected before any write happens.

All mutators are privileged. They must only be called by the engine while
executing a quorum approved call to its own instance.
*/
package owners
