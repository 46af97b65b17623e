// Package token implements the device-bound credential core: a signed token
// codec, an issuer for access and refresh tokens, and the renewal protocol
// that decides whether a presented pair is rejected, passed through, or
// rotated.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/timex"
)

// Payload keys written by the issuer and read back during renewal.
const (
	KeyUserID          = "userId"
	KeyDeviceID        = "deviceId"
	KeyEmail           = "email"
	KeyName            = "name"
	KeyDeviceName      = "deviceName"
	KeyDeviceSignature = "deviceSignature"
	KeyRandom          = "random"
)

// Claims is the decoded form of a signed token: the issuer-chosen payload
// plus the registered expiry. A payload is immutable once signed; changing it
// means minting a new token.
type Claims struct {
	Data map[string]string `json:"data"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string   { return c.Data[KeyUserID] }
func (c *Claims) DeviceID() string { return c.Data[KeyDeviceID] }

// HasExpired reports whether the expiry lies in the past. A token without an
// exp claim counts as expired.
func (c *Claims) HasExpired() bool {
	if c.ExpiresAt == nil {
		return true
	}
	return time.Now().After(c.ExpiresAt.Time)
}

// ShouldRenew reports whether the token is still valid but expires within the
// renewal window. An expired token never qualifies: expiry forces a full
// re-login rather than a silent rotation.
func (c *Claims) ShouldRenew(windowDays int) bool {
	if c.HasExpired() {
		return false
	}
	return time.Now().Add(timex.Days(windowDays)).After(c.ExpiresAt.Time)
}

// Codec signs payloads into compact time-boxed tokens and verifies presented
// ones against the process-wide signing secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Mint signs payload into a token that expires after ttl. The ttl must be
// positive.
func (c *Codec) Mint(payload map[string]string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	now := time.Now()
	claims := Claims{
		Data: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the signature and structure of tokenStr and returns its
// claims. Expiry is not checked here: it is a semantic decision made by the
// caller, so an expired refresh token can still be inspected for its device
// binding. Signature mismatch and structural corruption both collapse to
// common.ErrInvalidToken, leaving no verification oracle.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
