// Package store provides file-based persistence for the local identifier.
//
// IdentityFileStore implements domain.IdentityStore. The record lives under
// the configured home directory as identity.json, or as identity.json.enc
// when a passphrase is configured. Writes go through a temp file and an
// atomic rename; methods are safe for concurrent use.
//
// The anchor's attendance ledger lives in the sqlite subpackage.
package store
