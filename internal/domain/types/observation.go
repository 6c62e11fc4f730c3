package types

import "time"

// Observation is the latest signal reading for one neighbour.
type Observation struct {
	PeerID     PeerID    `json:"peer_id"`
	RSSI       int8      `json:"rssi"`
	ObservedAt time.Time `json:"observed_at"`
}

// Frame is one scan result delivered by a radio: the sender's raw service
// data plus the signal strength it was received with.
type Frame struct {
	Address    string    `json:"address,omitempty"`
	Payload    []byte    `json:"payload"`
	RSSI       int8      `json:"rssi"`
	ReceivedAt time.Time `json:"received_at"`
}
