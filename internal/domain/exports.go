package domain

import (
	interfaces "copresence/internal/domain/interfaces"
	types "copresence/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	PeerID         = types.PeerID
	RollNumber     = types.RollNumber
	ReportID       = types.ReportID
	Identity       = types.Identity
	Observation    = types.Observation
	Frame          = types.Frame
	SessionState   = types.SessionState
	Status         = types.Status
	StatusReport   = types.StatusReport
	AdvertiseError = types.AdvertiseError
	Sighting       = types.Sighting
	PairDistance   = types.PairDistance
	ScanReport     = types.ScanReport
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RadioAdapter    = interfaces.RadioAdapter
	StatusSink      = interfaces.StatusSink
	StatusSinkFunc  = interfaces.StatusSinkFunc
	IdentityStore   = interfaces.IdentityStore
	AttendanceStore = interfaces.AttendanceStore
	IdentityService = interfaces.IdentityService
	SessionService  = interfaces.SessionService
	AnchorService   = interfaces.AnchorService
)

// Re-exported constants.
const (
	SessionIdle        = types.SessionIdle
	SessionAdvertising = types.SessionAdvertising

	StatusNotMarked       = types.StatusNotMarked
	StatusMarked          = types.StatusMarked
	StatusAdvertiseFailed = types.StatusAdvertiseFailed
	StatusMissingIdentity = types.StatusMissingIdentity

	AdvertiseDataTooLarge       = types.AdvertiseDataTooLarge
	AdvertiseTooManyAdvertisers = types.AdvertiseTooManyAdvertisers
	AdvertiseAlreadyStarted     = types.AdvertiseAlreadyStarted
	AdvertiseInternalError      = types.AdvertiseInternalError
	AdvertiseFeatureUnsupported = types.AdvertiseFeatureUnsupported
)
