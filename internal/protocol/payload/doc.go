// Package payload encodes and decodes the proximity broadcast.
//
// # Wire format
//
//	offset  size  field
//	0       1     tx_power (signed)
//	1       1     self_id
//	2+2k    1     peer_id[k]
//	3+2k    1     rssi[k] (signed)
//
// A payload carries exactly maxPeers pair slots, so its length is always
// 2 + 2*maxPeers regardless of how many neighbours the sender currently
// hears. Unused slots are zero. Because of that padding, peer id 0 in a slot
// reads as "empty" on the receiving side.
//
// # Errors
//
// ErrTooShort is returned for input shorter than the two-byte header and
// ErrUnpaired for a digest whose pair section has an odd length. Neither
// Decode nor DecodeDigest panics on any input.
package payload
