// Package app wires application dependencies for the CLI.
//
// Config is read from the environment and adjusted by flags. NewWire
// builds the identity store and service up front; the radio, the
// attendance ledger and the session and anchor services are built on
// first use, so commands that do not touch the radio never open it.
package app
