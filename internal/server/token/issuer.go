package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/server/models"
)

// DeviceInfo carries the client-supplied identification of one installation,
// taken from request headers at the transport boundary.
type DeviceInfo struct {
	Name      string
	Signature string
}

// Issuer builds access and refresh token payloads and delegates signing to
// the codec.
type Issuer struct {
	codec       *Codec
	accessTTL   time.Duration
	refreshTTL  time.Duration
	nonceLength int
}

func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration, nonceLength int) *Issuer {
	return &Issuer{
		codec:       codec,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		nonceLength: nonceLength,
	}
}

// IssueAccessToken mints the short-lived credential presented on every
// protected request. The payload is deterministic; uniqueness is not a goal
// for access tokens.
func (i *Issuer) IssueAccessToken(user *models.User, cred *models.Credential, deviceID string) (string, error) {
	payload := map[string]string{
		KeyUserID:   user.ID,
		KeyEmail:    cred.Email,
		KeyName:     user.Name,
		KeyDeviceID: deviceID,
	}
	return i.codec.Mint(payload, i.accessTTL)
}

// IssueRefreshToken mints the long-lived credential bound to one device. The
// nonce guarantees that two refresh tokens for the same device are never
// bit-identical; it carries no other meaning.
func (i *Issuer) IssueRefreshToken(device DeviceInfo, deviceID, userID string) (string, error) {
	nonce, err := i.nonce()
	if err != nil {
		return "", err
	}

	payload := map[string]string{
		KeyUserID:          userID,
		KeyDeviceName:      device.Name,
		KeyDeviceSignature: device.Signature,
		KeyRandom:          nonce,
		KeyDeviceID:        deviceID,
	}
	return i.codec.Mint(payload, i.refreshTTL)
}

// RenewRefreshToken mints a replacement refresh token that keeps the old
// token's user and device identity. Only the nonce and expiry change.
func (i *Issuer) RenewRefreshToken(old *Claims, device DeviceInfo) (string, error) {
	return i.IssueRefreshToken(device, old.DeviceID(), old.UserID())
}

func (i *Issuer) nonce() (string, error) {
	b := make([]byte, i.nonceLength)
	if _, err := rand.Read(b); err != nil {
		// No fallback to a weaker source.
		return "", fmt.Errorf("%w: %v", common.ErrEntropyUnavailable, err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
