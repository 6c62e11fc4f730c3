package types

import "fmt"

// SessionState is the lifecycle state of an attendance session.
type SessionState int32

const (
	SessionIdle SessionState = iota
	SessionAdvertising
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionAdvertising:
		return "advertising"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

// Status is what the session reports to the presentation layer.
type Status int

const (
	StatusNotMarked Status = iota
	StatusMarked
	StatusAdvertiseFailed
	StatusMissingIdentity
)

func (s Status) String() string {
	switch s {
	case StatusNotMarked:
		return "not marked"
	case StatusMarked:
		return "marked"
	case StatusAdvertiseFailed:
		return "advertise failed"
	case StatusMissingIdentity:
		return "missing identity"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StatusReport carries a Status and, for failures, its cause.
type StatusReport struct {
	Status Status
	// Code is the radio failure code for StatusAdvertiseFailed.
	Code int
	Err  error
}

func (r StatusReport) String() string {
	switch r.Status {
	case StatusAdvertiseFailed:
		return fmt.Sprintf("%s (code %d)", r.Status, r.Code)
	case StatusMissingIdentity:
		if r.Err != nil {
			return fmt.Sprintf("%s: %v", r.Status, r.Err)
		}
	}
	return r.Status.String()
}
