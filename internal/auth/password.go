package auth

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts. It applies to
// both schemes so a stored credential never depends on which one hashed it.
const MaxPasswordBytes = 72

// Supported password hashing schemes.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	BurnVerify(password string) bool
}

// Hasher hashes new credentials with the configured scheme and verifies
// stored hashes of either scheme, detected by prefix.
type Hasher struct {
	scheme string
	params *argon2id.Params
	// dummy is verified against when no user exists so login timing does not
	// reveal whether an email is registered.
	dummy []byte
}

var _ PasswordHasher = (*Hasher)(nil)

// NewHasher creates a hasher for the given scheme.
func NewHasher(scheme string) (*Hasher, error) {
	switch scheme {
	case SchemeBcrypt, SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password hash scheme %q", scheme)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	return &Hasher{scheme: scheme, params: argon2id.DefaultParams, dummy: dummy}, nil
}

// Hash returns a salted hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == SchemeArgon2id {
		hash, err := argon2id.CreateHash(password, h.params)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return hash, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *Hasher) Verify(password, hash string) bool {
	if strings.HasPrefix(hash, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnVerify spends the same effort as a real verification and always fails.
func (h *Hasher) BurnVerify(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}
