package identity_test

import (
	"errors"
	"testing"

	"copresence/internal/domain"
	"copresence/internal/services/identity"
)

type memStore struct {
	value string
	ok    bool
	sets  int
}

func (m *memStore) GetIdentifier() (string, bool, error) { return m.value, m.ok, nil }

func (m *memStore) SetIdentifier(v string) error {
	m.value, m.ok = v, true
	m.sets++
	return nil
}

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    domain.PeerID
		wantErr error
	}{
		{"0", 0, nil},
		{"7", 7, nil},
		{" 255\n", 255, nil},
		{"256", 0, identity.ErrIdentifierOverflow},
		{"99999999999999999999999", 0, identity.ErrIdentifierOverflow},
		{"-1", 0, identity.ErrInvalidIdentifier},
		{"12a", 0, identity.ErrInvalidIdentifier},
		{"", 0, domain.ErrMissingIdentity},
	}
	for _, c := range cases {
		got, err := identity.Parse(c.in)
		if c.wantErr != nil {
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("Parse(%q) err = %v, want %v", c.in, err, c.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSetRollNumber_RejectsOverflowWithoutWriting(t *testing.T) {
	st := &memStore{}
	svc := identity.New(st)

	if _, err := svc.SetRollNumber("300"); !errors.Is(err, identity.ErrIdentifierOverflow) {
		t.Fatalf("err = %v, want ErrIdentifierOverflow", err)
	}
	if st.sets != 0 {
		t.Fatalf("store written %d times, want 0", st.sets)
	}

	id, err := svc.SetRollNumber(" 42 ")
	if err != nil {
		t.Fatalf("SetRollNumber: %v", err)
	}
	if id != 42 || st.value != "42" {
		t.Fatalf("id=%d stored=%q", id, st.value)
	}
}

func TestPeerID_Missing(t *testing.T) {
	svc := identity.New(&memStore{})
	if _, err := svc.PeerID(); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Fatalf("err = %v, want ErrMissingIdentity", err)
	}
}
