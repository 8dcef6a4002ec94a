/*
Package sigs implements quorum verification: given a digest and an ordered
list of signatures it recovers every signer and checks that together they
form a quorum of a registry.

Signers must be listed in strictly increasing identity order. This rejects
a signer listed twice and enforces one canonical order of signatures
without keeping any auxiliary set.
*/
package sigs
