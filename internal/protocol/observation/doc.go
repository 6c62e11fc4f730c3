// Package observation keeps the latest signal reading per neighbour and ranks
// them for the broadcast digest.
//
// Only the most recent reading per peer is kept: an upsert replaces the entry
// outright, with no averaging. Ranking is by RSSI descending, and equal RSSI
// values are ordered by ascending peer id so the digest is reproducible.
// Entries leave the table through Clear or, when the owner opts in, through
// EvictBefore.
package observation
