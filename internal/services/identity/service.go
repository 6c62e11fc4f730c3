package identity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"copresence/internal/domain"
)

var (
	// ErrInvalidIdentifier is returned for a roll number that is not a
	// non-negative decimal integer.
	ErrInvalidIdentifier = errors.New("identifier must be a decimal number")
	// ErrIdentifierOverflow is returned for a roll number above 255.
	ErrIdentifierOverflow = fmt.Errorf("identifier does not fit in one byte (max %d)", math.MaxUint8)
)

// Parse converts a roll number to the PeerID it is broadcast as.
func Parse(value string) (domain.PeerID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, domain.ErrMissingIdentity
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%q: %w", value, ErrIdentifierOverflow)
		}
		return 0, fmt.Errorf("%q: %w", value, ErrInvalidIdentifier)
	}
	if n > math.MaxUint8 {
		return 0, fmt.Errorf("%q: %w", value, ErrIdentifierOverflow)
	}
	return domain.PeerID(n), nil
}

// Service manages the identifier using a backing store.
type Service struct {
	store domain.IdentityStore
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service { return &Service{store: s} }

// SetRollNumber validates value and stores it. Nothing is written when
// validation fails.
func (s *Service) SetRollNumber(value string) (domain.PeerID, error) {
	id, err := Parse(value)
	if err != nil {
		return 0, err
	}
	if err := s.store.SetIdentifier(strings.TrimSpace(value)); err != nil {
		return 0, err
	}
	return id, nil
}

// RollNumber returns the stored roll number as entered.
func (s *Service) RollNumber() (domain.RollNumber, bool, error) {
	v, ok, err := s.store.GetIdentifier()
	if err != nil || !ok {
		return "", false, err
	}
	return domain.RollNumber(v), true, nil
}

// PeerID loads and converts the stored roll number. It returns
// domain.ErrMissingIdentity when nothing has been stored.
func (s *Service) PeerID() (domain.PeerID, error) {
	v, ok, err := s.store.GetIdentifier()
	if err != nil {
		return 0, fmt.Errorf("load identifier: %w", err)
	}
	if !ok {
		return 0, domain.ErrMissingIdentity
	}
	return Parse(v)
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
