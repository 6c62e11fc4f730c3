package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"copresence/internal/util/memzero"
)

// sealedVersion is the newest sealed-file format this package can open.
const sealedVersion = 1

var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity file")

// kdfParams are the scrypt cost parameters recorded next to the ciphertext
// so they can be raised later without breaking existing files.
type kdfParams struct {
	N int `json:"scrypt_N"`
	R int `json:"scrypt_r"`
	P int `json:"scrypt_p"`
}

func defaultKDF() kdfParams { return kdfParams{N: 1 << 15, R: 8, P: 1} }

// sealed is the on-disk JSON form of an encrypted record.
type sealed struct {
	V    int    `json:"v"`
	Salt []byte `json:"salt"`
	kdfParams
	Cipher []byte `json:"cipher"`
}

func deriveKey(passphrase string, salt []byte, p kdfParams) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, chacha20poly1305.KeySize)
}

// seal encrypts raw under a key derived from passphrase and a fresh salt.
// The salt doubles as associated data.
func seal(passphrase string, raw []byte, p kdfParams) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(passphrase, salt, p)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// A zero nonce is safe: every seal derives a new key from a new salt.
	nonce := make([]byte, aead.NonceSize())
	return json.Marshal(sealed{
		V:         sealedVersion,
		Salt:      salt,
		kdfParams: p,
		Cipher:    aead.Seal(nil, nonce, raw, salt),
	})
}

// unseal reverses seal.
func unseal(passphrase string, b []byte) ([]byte, error) {
	var s sealed
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.V > sealedVersion {
		return nil, fmt.Errorf("unsupported sealed file version %d", s.V)
	}
	key, err := deriveKey(passphrase, s.Salt, s.kdfParams)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, make([]byte, aead.NonceSize()), s.Cipher, s.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}
