/*
Package factory creates multisig instances and keeps the directory of all
instances of a host.

Instances are numbered sequentially from zero. The address of an instance
is derived from its index, so it is known before creation and never
collides with a key based identity. The directory is kept in the host
store, so that engines can be rebuilt with Load after a restart.
*/
package factory
