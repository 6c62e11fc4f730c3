package payload

import (
	"errors"

	"copresence/internal/domain"
)

// HeaderLen is the size of the [tx_power, self_id] header.
const HeaderLen = 2

var (
	// ErrTooShort is returned when a frame cannot hold the header.
	ErrTooShort = errors.New("payload: frame shorter than header")
	// ErrUnpaired is returned when the pair section has a dangling byte.
	ErrUnpaired = errors.New("payload: odd number of digest bytes")
)

// Header is the part of a frame every receiver interprets.
type Header struct {
	TxPower int8
	Sender  domain.PeerID
}

// Reading is one (peer, rssi) pair from a sender's digest.
type Reading struct {
	PeerID domain.PeerID
	RSSI   int8
}

// Digest is a fully decoded frame.
type Digest struct {
	Header
	Readings []Reading
}

// Size returns the encoded length for maxPeers slots.
func Size(maxPeers int) int {
	if maxPeers < 0 {
		maxPeers = 0
	}
	return HeaderLen + 2*maxPeers
}

// Encode writes the header followed by up to maxPeers entries of ranked.
// ranked is expected in rank order already; see observation.Table.TopN.
func Encode(self domain.PeerID, txPower int8, ranked []domain.Observation, maxPeers int) []byte {
	out := make([]byte, Size(maxPeers))
	out[0] = byte(txPower)
	out[1] = byte(self)

	n := min(len(ranked), (len(out)-HeaderLen)/2)
	for k := 0; k < n; k++ {
		off := HeaderLen + 2*k
		out[off] = byte(ranked[k].PeerID)
		out[off+1] = byte(ranked[k].RSSI)
	}
	return out
}

// Decode reads only the header of b.
func Decode(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrTooShort
	}
	return Header{
		TxPower: int8(b[0]),
		Sender:  domain.PeerID(b[1]),
	}, nil
}

// DecodeDigest reads the header and every occupied pair slot of b.
func DecodeDigest(b []byte) (Digest, error) {
	h, err := Decode(b)
	if err != nil {
		return Digest{}, err
	}
	body := b[HeaderLen:]
	if len(body)%2 != 0 {
		return Digest{}, ErrUnpaired
	}

	d := Digest{Header: h}
	for off := 0; off < len(body); off += 2 {
		id := domain.PeerID(body[off])
		if id == 0 {
			continue
		}
		d.Readings = append(d.Readings, Reading{PeerID: id, RSSI: int8(body[off+1])})
	}
	return d, nil
}
