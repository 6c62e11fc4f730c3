package payload_test

import (
	"bytes"
	"errors"
	"testing"

	"copresence/internal/domain"
	"copresence/internal/protocol/payload"
)

func sb(v int8) byte { return byte(v) }

func TestEncodeDecode_HeaderRoundTrip(t *testing.T) {
	for _, tx := range []int8{-128, -59, -1, 0, 1, 127} {
		for _, id := range []domain.PeerID{0, 1, 7, 128, 255} {
			b := payload.Encode(id, tx, nil, 10)
			h, err := payload.Decode(b)
			if err != nil {
				t.Fatalf("Decode(%v): %v", b, err)
			}
			if h.TxPower != tx || h.Sender != id {
				t.Fatalf("got (%d, %d), want (%d, %d)", h.TxPower, h.Sender, tx, id)
			}
		}
	}
}

func TestEncode_FixedLength(t *testing.T) {
	many := make([]domain.Observation, 25)
	for i := range many {
		many[i] = domain.Observation{PeerID: domain.PeerID(i + 1), RSSI: int8(-30 - i)}
	}
	for _, maxPeers := range []int{0, 1, 3, 10, 11} {
		for _, n := range []int{0, 1, 5, 25} {
			got := payload.Encode(9, -59, many[:n], maxPeers)
			if len(got) != 2+2*maxPeers {
				t.Fatalf("maxPeers=%d peers=%d: len %d, want %d", maxPeers, n, len(got), 2+2*maxPeers)
			}
		}
	}
	if got := payload.Size(-3); got != payload.HeaderLen {
		t.Fatalf("Size(-3) = %d, want %d", got, payload.HeaderLen)
	}
}

func TestEncode_ZeroPadsUnusedSlots(t *testing.T) {
	got := payload.Encode(7, -59, []domain.Observation{
		{PeerID: 3, RSSI: -40},
		{PeerID: 9, RSSI: -70},
	}, 10)

	want := make([]byte, 22)
	want[0] = sb(-59)
	want[1] = 7
	want[2], want[3] = 3, sb(-40)
	want[4], want[5] = 9, sb(-70)
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestDecode_TooShort(t *testing.T) {
	for _, in := range [][]byte{nil, {}, {0x01}} {
		if _, err := payload.Decode(in); !errors.Is(err, payload.ErrTooShort) {
			t.Fatalf("Decode(%v) err = %v, want ErrTooShort", in, err)
		}
	}
}

func TestDecode_SignedTxPower(t *testing.T) {
	h, err := payload.Decode([]byte{0xC2, 0x05})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.TxPower != -62 || h.Sender != 5 {
		t.Fatalf("got (%d, %d), want (-62, 5)", h.TxPower, h.Sender)
	}
}

func TestDecodeDigest_SkipsEmptySlots(t *testing.T) {
	in := payload.Encode(4, -60, []domain.Observation{
		{PeerID: 12, RSSI: -45},
		{PeerID: 2, RSSI: -80},
	}, 4)

	d, err := payload.DecodeDigest(in)
	if err != nil {
		t.Fatalf("DecodeDigest: %v", err)
	}
	if d.Sender != 4 || d.TxPower != -60 {
		t.Fatalf("header = %+v", d.Header)
	}
	want := []payload.Reading{{PeerID: 12, RSSI: -45}, {PeerID: 2, RSSI: -80}}
	if len(d.Readings) != len(want) {
		t.Fatalf("readings = %+v, want %+v", d.Readings, want)
	}
	for i := range want {
		if d.Readings[i] != want[i] {
			t.Fatalf("reading %d = %+v, want %+v", i, d.Readings[i], want[i])
		}
	}
}

func TestDecodeDigest_Malformed(t *testing.T) {
	if _, err := payload.DecodeDigest([]byte{0x01}); !errors.Is(err, payload.ErrTooShort) {
		t.Fatalf("short: err = %v", err)
	}
	if _, err := payload.DecodeDigest([]byte{0xC5, 0x01, 0x02}); !errors.Is(err, payload.ErrUnpaired) {
		t.Fatalf("odd: err = %v", err)
	}
	d, err := payload.DecodeDigest([]byte{0xC5, 0x01})
	if err != nil {
		t.Fatalf("header only: %v", err)
	}
	if len(d.Readings) != 0 {
		t.Fatalf("header only: readings = %+v", d.Readings)
	}
}
