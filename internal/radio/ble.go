package radio

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

// ErrNoAdapter is returned where no Bluetooth LE adapter can be driven.
var ErrNoAdapter = errors.New("bluetooth le adapter unavailable")

// bluetoothBase is the Bluetooth base UUID that 16-bit service ids expand into.
var bluetoothBase = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// service16 returns the 16-bit alias of id, if id is one.
func service16(id uuid.UUID) (uint16, bool) {
	if id[0] != 0 || id[1] != 0 || [12]byte(id[4:]) != [12]byte(bluetoothBase[4:]) {
		return 0, false
	}
	return binary.BigEndian.Uint16(id[2:4]), true
}

// serviceData is the body of a 16-bit service data field: the alias in
// little-endian order followed by the payload.
func serviceData(alias uint16, payload []byte) []byte {
	return append(binary.LittleEndian.AppendUint16(nil, alias), payload...)
}
