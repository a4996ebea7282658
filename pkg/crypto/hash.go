// Package crypto hashes account passwords with Argon2id.
//
// Hashes use the PHC string layout so the parameters travel with the hash:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const scheme = "argon2id"

var (
	ErrInvalidHash       = errors.New("crypto: invalid hash format")
	ErrUnsupportedScheme = errors.New("crypto: unsupported hash scheme")
	ErrEmptyPassword     = errors.New("crypto: password cannot be empty")
)

// Argon2Params are the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are used for every new hash in production.
func DefaultArgon2Params() *Argon2Params {
	return &Argon2Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32}
}

// FastArgon2Params trades strength for speed. Tests only.
func FastArgon2Params() *Argon2Params {
	return &Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// weaker reports whether p costs less than target on any axis.
func (p Argon2Params) weaker(target Argon2Params) bool {
	return p.Memory < target.Memory ||
		p.Iterations < target.Iterations ||
		p.Parallelism < target.Parallelism ||
		p.KeyLength < target.KeyLength
}

type encodedHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func (e encodedHash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		scheme, argon2.Version,
		e.params.Memory, e.params.Iterations, e.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(e.salt),
		base64.RawStdEncoding.EncodeToString(e.key),
	)
}

func parseHash(s string) (encodedHash, error) {
	var e encodedHash

	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return e, ErrInvalidHash
	}
	if parts[1] != scheme {
		return e, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return e, fmt.Errorf("%w: version %q", ErrInvalidHash, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &e.params.Memory, &e.params.Iterations, &e.params.Parallelism); err != nil {
		return e, fmt.Errorf("%w: parameters %q", ErrInvalidHash, parts[3])
	}

	var err error
	if e.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return e, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	if e.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return e, fmt.Errorf("%w: key", ErrInvalidHash)
	}
	e.params.SaltLength = uint32(len(e.salt))
	e.params.KeyLength = uint32(len(e.key))
	return e, nil
}

func derive(password string, salt []byte, p Argon2Params) []byte {
	return argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher struct {
	params Argon2Params
}

// NewPasswordHasher uses DefaultArgon2Params.
func NewPasswordHasher() *PasswordHasher {
	return NewPasswordHasherWithParams(DefaultArgon2Params())
}

// NewPasswordHasherWithParams uses params for new hashes.
func NewPasswordHasherWithParams(params *Argon2Params) *PasswordHasher {
	return &PasswordHasher{params: *params}
}

// Hash returns the encoded Argon2id hash of password with a fresh salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}
	return encodedHash{params: h.params, salt: salt, key: derive(password, salt, h.params)}.String(), nil
}

// Verify checks password against an encoded hash using the parameters
// stored in the hash.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}
	e, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(e.key, derive(password, e.salt, e.params)) == 1, nil
}

// NeedsRehash reports whether encoded was made with weaker parameters than
// the hasher's. Unparseable hashes always need a rehash.
func (h *PasswordHasher) NeedsRehash(encoded string) bool {
	e, err := parseHash(encoded)
	if err != nil {
		return true
	}
	return e.params.weaker(h.params)
}
