// Package password hashes and verifies user passwords with argon2id,
// encoding parameters alongside the digest in the PHC string format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	memoryKB    uint32 = 64 * 1024
	timeCost    uint32 = 3
	parallelism uint8  = 2
	saltLength         = 16
	keyLength   uint32 = 32
)

// ErrMalformedHash means the stored hash string could not be parsed; verify
// treats it as a mismatch-with-error rather than guessing.
var ErrMalformedHash = errors.New("malformed password hash")

// Hash derives an argon2id digest of plain and returns it in encoded form:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt-b64>$<hash-b64>
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey([]byte(plain), salt, timeCost, memoryKB, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryKB, timeCost, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether plain matches the encoded hash. The digest
// comparison is constant time. The hash's own parameters are used, so old
// hashes stay verifiable after cost defaults change.
func Verify(plain, encoded string) (bool, error) {
	params, salt, digest, err := decode(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(plain), salt, params.time, params.memory, params.parallelism, uint32(len(digest)))

	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

type params struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func decode(encoded string) (params, []byte, []byte, error) {
	var p params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.parallelism); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	return p, salt, digest, nil
}
