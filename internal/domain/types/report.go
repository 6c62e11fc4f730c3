package types

import "time"

// Sighting is one device the anchor heard during a scan.
type Sighting struct {
	PeerID  PeerID `json:"peer_id"`
	TxPower int8   `json:"tx_power"`
	// Distance is the anchor's own estimate in metres.
	Distance float64 `json:"distance"`
	// Neighbours counts the devices whose digest listed this peer.
	Neighbours int `json:"neighbours"`
}

// PairDistance is the best distance estimate between two devices.
type PairDistance struct {
	A      PeerID  `json:"a"`
	B      PeerID  `json:"b"`
	Meters float64 `json:"meters"`
}

// ScanReport is the outcome of one anchor scan.
type ScanReport struct {
	ID        ReportID       `json:"id"`
	Service   string         `json:"service"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Sightings []Sighting     `json:"sightings"`
	Distances []PairDistance `json:"distances"`
}
