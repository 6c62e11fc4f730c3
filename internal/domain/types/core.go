package types

import "strconv"

// PeerID is the one-byte identifier a device broadcasts as itself and uses
// to refer to the neighbours it hears.
type PeerID uint8

// String returns the decimal form of the identifier.
func (id PeerID) String() string { return strconv.Itoa(int(id)) }

// RollNumber is the user-supplied identifier string a PeerID is derived from.
type RollNumber string

// String returns the string form of the roll number.
func (r RollNumber) String() string { return string(r) }

// ReportID identifies one persisted anchor scan.
type ReportID string

// String returns the string form of the report identifier.
func (id ReportID) String() string { return string(id) }
