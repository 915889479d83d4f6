// Package settings persists small key/value preferences for portalsend.
//
// The only key the transfer core reads is ReceiverAddressKey, the
// last-known receiver address. Writing it is the job of a separate
// settings surface (the set-receiver command); sessions only read.
//
// Two stores are provided: BoltStore, a bbolt file shared by every
// process on the machine, and MapStore, an in-memory store for tests and
// one-shot invocations.
package settings
