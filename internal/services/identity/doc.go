// Package identity validates and persists the local identifier.
//
// The user enters a roll number once; it is stored through the
// domain.IdentityStore and converted to the one-byte PeerID this device
// broadcasts. Conversion is lossless or it fails: values that are not
// decimal numbers, or that do not fit in a byte, are rejected with
// ErrInvalidIdentifier or ErrIdentifierOverflow rather than truncated.
package identity
