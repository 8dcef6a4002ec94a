/*
Package ledger keeps the value held by every account of a host.

There is a single currency and no logic beyond moving value between
accounts: the balance of an account may never go below zero or above
the maximum representable amount. The router of the execution engine
uses the ledger to move the value attached to a call from the instance
to the call target.
*/
package ledger
