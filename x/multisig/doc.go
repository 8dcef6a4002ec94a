/*
Package multisig implements the execution engine of a multi-signature
instance.

An instance is a shared account controlled by an owner registry. Every
state changing request carries a list of signatures over a digest that
binds the instance identity, the current nonce and the requested calls.
Once a quorum of owners signed, the nonce is consumed and the calls are
executed one after another. A failing call never fails the request: its
effects are dropped and a TransactionFailed event records the reason.

Owner management is itself a call, directed at the instance address and
handled by the instance acting as a contract. Only the instance itself is
allowed to invoke those methods.
*/
package multisig
