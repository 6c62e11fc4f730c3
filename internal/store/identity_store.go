package store

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"

	"copresence/internal/domain"
)

const (
	idFilename       = "identity.json"
	sealedIDFilename = "identity.json.enc"
)

// IdentityFileStore persists the local identifier to disk. With a non-empty
// passphrase the record is sealed with scrypt and ChaCha20-Poly1305;
// otherwise it is plain JSON.
type IdentityFileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir, passphrase string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir, passphrase: passphrase}
}

// SetIdentifier writes value, replacing any previous identifier.
func (s *IdentityFileStore) SetIdentifier(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.Identity{RollNumber: domain.RollNumber(strings.TrimSpace(value))}
	path := filepath.Join(s.dir, s.filename())
	if s.passphrase == "" {
		return writeJSON(path, id, 0o600)
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	ct, err := seal(s.passphrase, raw, defaultKDF())
	if err != nil {
		return err
	}
	return writeFile(path, ct, 0o600)
}

// GetIdentifier returns the stored identifier; ok is false when none has
// been stored yet.
func (s *IdentityFileStore) GetIdentifier() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, s.filename()))
	if err != nil || b == nil {
		return "", false, err
	}
	if s.passphrase != "" {
		if b, err = unseal(s.passphrase, b); err != nil {
			return "", false, err
		}
	}
	var id domain.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return "", false, err
	}

	if id.RollNumber == "" {
		return "", false, nil
	}
	return id.RollNumber.String(), true, nil
}

func (s *IdentityFileStore) filename() string {
	if s.passphrase == "" {
		return idFilename
	}
	return sealedIDFilename
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
