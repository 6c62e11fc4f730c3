package types

import "fmt"

// Advertise failure codes, numbered as the Android BLE stack reports them.
const (
	AdvertiseDataTooLarge       = 1
	AdvertiseTooManyAdvertisers = 2
	AdvertiseAlreadyStarted     = 3
	AdvertiseInternalError      = 4
	AdvertiseFeatureUnsupported = 5
)

// AdvertiseError is returned by a radio that refused to start a broadcast.
type AdvertiseError struct {
	Code int
	Err  error
}

func (e *AdvertiseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("advertise failed with code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("advertise failed with code %d", e.Code)
}

func (e *AdvertiseError) Unwrap() error { return e.Err }
