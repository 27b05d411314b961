package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

const (
	HashAlgorithmBcrypt = "bcrypt"
	HashAlgorithmScrypt = "scrypt"
)

// bcryptMaxInput is the number of bytes bcrypt reads from a password
const bcryptMaxInput = 72

const (
	scryptDefaultLogN = 14
	scryptR           = 8
	scryptP           = 1
	scryptKeyLen      = 64
	scryptSaltLen     = 16
)

// NewPasswordHasher returns the hasher for algorithm. A cost of zero
// selects the algorithm default.
func NewPasswordHasher(algorithm string, cost int) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", HashAlgorithmBcrypt:
		return NewBcryptHasher(cost), nil
	case HashAlgorithmScrypt:
		return NewScryptHasher(cost), nil
	default:
		return nil, errors.New("unknown password hash algorithm", errors.CategoryBadInput).
			WithMetadata(map[string]any{"algorithm": algorithm})
	}
}

// BcryptHasher stores modular crypt strings, salt included.
// Passwords longer than 72 bytes are reduced to base64(sha256(password))
// before hashing, on both hash and compare.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher clamps cost to the bcrypt range
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = passwordHashCost()
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

// HashPassword will generate a password hash
func (h *BcryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.Cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(out), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (h *BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return errors.Wrap(err, errors.CategoryBadInput, "invalid password hash")
	}
	return nil
}

// Verify is false for mismatches and for malformed hashes
func (h *BcryptHasher) Verify(hash, password string) bool {
	return h.ComparePasswordAndHash(password, hash) == nil
}

func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// ScryptHasher stores "<hex hash>.<salt>" strings
type ScryptHasher struct {
	LogN int
}

func NewScryptHasher(logN int) *ScryptHasher {
	if logN <= 1 || logN > 20 {
		logN = scryptDefaultLogN
	}
	return &ScryptHasher{LogN: logN}
}

func (h *ScryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	raw := make([]byte, scryptSaltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate salt")
	}
	salt := hex.EncodeToString(raw)

	key, err := h.derive(password, salt, scryptKeyLen)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key) + "." + salt, nil
}

func (h *ScryptHasher) ComparePasswordAndHash(password, hash string) error {
	stored, salt, ok := strings.Cut(hash, ".")
	if !ok || stored == "" || salt == "" {
		return errors.New("invalid password hash", errors.CategoryBadInput)
	}

	expected, err := hex.DecodeString(stored)
	if err != nil || len(expected) == 0 {
		return errors.New("invalid password hash", errors.CategoryBadInput)
	}

	computed, err := h.derive(password, salt, len(expected))
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

func (h *ScryptHasher) Verify(hash, password string) bool {
	return h.ComparePasswordAndHash(password, hash) == nil
}

func (h *ScryptHasher) derive(password, salt string, keyLen int) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), 1<<h.LogN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to derive password key")
	}
	return key, nil
}
