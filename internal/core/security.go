// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const argonPrefix = "argon2id"

var ErrInvalidHash = errors.New("invalid password hash")

type ArgonParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var DefaultArgonParams = ArgonParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func (p ArgonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// weakerThan reports whether p costs less than target.
func (p ArgonParams) weakerThan(target ArgonParams) bool {
	return p.Memory != target.Memory ||
		p.Time != target.Time ||
		p.Threads != target.Threads ||
		p.KeyLen != target.KeyLen
}

// HashPassword encodes password in the PHC argon2id string format.
func HashPassword(password string) (string, error) {
	return hashWith(password, DefaultArgonParams)
}

func hashWith(password string, p ArgonParams) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix, argon2.Version,
		p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt),
		b64.EncodeToString(p.derive(password, salt)),
	), nil
}

// VerifyPassword checks password against an encoded hash. A match against
// a hash made with weaker parameters also returns a fresh encoding.
func VerifyPassword(password, encoded string) (ok bool, rehash string, err error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, "", err
	}

	if subtle.ConstantTimeCompare(want, p.derive(password, salt)) != 1 {
		return false, "", nil
	}

	if p.weakerThan(DefaultArgonParams) {
		if fresh, err := HashPassword(password); err == nil {
			rehash = fresh
		}
	}
	return true, rehash, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("unknown-account-placeholder")
	if err != nil {
		panic(fmt.Sprintf("security: dummy hash: %v", err))
	}
	return hash
})

// BurnPasswordCheck runs a full verification against a throwaway hash so a
// missing account costs the same time as a wrong password.
func BurnPasswordCheck(password string) {
	//nolint:errcheck // result is discarded on purpose
	_, _, _ = VerifyPassword(password, dummyHash())
}

// SecureCompare compares secrets in constant time without leaking length.
func SecureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

func decodeHash(encoded string) (*ArgonParams, []byte, []byte, error) {
	// "", algorithm, version, params, salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, ErrInvalidHash
	}
	if parts[1] != argonPrefix {
		return nil, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("%w: version %q", ErrInvalidHash, parts[2])
	}

	var p ArgonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: params: %w", ErrInvalidHash, err)
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidHash, err)
	}

	//nolint:gosec // G115: argon2id keys are 32 bytes
	p.KeyLen = uint32(len(key))
	p.SaltLen = len(salt)

	return &p, salt, key, nil
}
