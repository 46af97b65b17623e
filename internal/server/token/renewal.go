package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/server/models"
)

// DeviceRegistry is the slice of the device store the renewal protocol needs.
// The registry, not the token signature, is the source of truth for whether a
// credential is still live: the signature only proves the token was once
// legitimately issued.
type DeviceRegistry interface {
	FindByID(ctx context.Context, deviceID string) (*models.Device, error)
	UpdateTokens(ctx context.Context, deviceID, accessToken, refreshToken string) error
}

// AccountStore resolves the user and credential documents needed to re-mint
// an access token with current account data.
type AccountStore interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
	FindCredential(ctx context.Context, credentialID string) (*models.Credential, error)
}

// Pair holds the two presented or returned token strings. Either may be
// empty.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Outcome is the result of a successful renewal pass: the pair the client
// should use from now on, flags saying which side was rotated, and the
// decoded claims of the final access token when one is present.
type Outcome struct {
	Pair
	AccessRotated  bool
	RefreshRotated bool
	Access         *Claims
}

// Renewer evaluates presented access/refresh pairs. The refresh token is
// always evaluated first, and the access token is never trusted as the device
// binding authority. The registry handle is injected; the renewer itself
// holds no mutable state, so concurrent calls need no coordination.
type Renewer struct {
	codec      *Codec
	issuer     *Issuer
	devices    DeviceRegistry
	accounts   AccountStore
	windowDays int
}

func NewRenewer(codec *Codec, issuer *Issuer, devices DeviceRegistry, accounts AccountStore, windowDays int) *Renewer {
	return &Renewer{
		codec:      codec,
		issuer:     issuer,
		devices:    devices,
		accounts:   accounts,
		windowDays: windowDays,
	}
}

// Renew decides what happens to the presented pair. Terminal failures are
// common.ErrRefreshTokenExpired and common.ErrDeviceNotRegistered (see
// common.ForceReLogin); structural problems map to common.ErrInvalidToken.
// Each error is returned, never panicked, and nothing is retried here.
func (r *Renewer) Renew(ctx context.Context, presented Pair) (*Outcome, error) {
	if presented.AccessToken == "" && presented.RefreshToken == "" {
		// At least one token is required; no registry call is made.
		return nil, common.ErrInvalidToken
	}

	out := &Outcome{Pair: presented}

	var refresh *Claims
	var device *models.Device
	if presented.RefreshToken != "" {
		var err error
		refresh, device, err = r.evaluateRefresh(ctx, out)
		if err != nil {
			return nil, err
		}
	}

	if presented.AccessToken == "" {
		return out, nil
	}

	if refresh == nil {
		return out, r.checkBareAccess(out)
	}

	return out, r.evaluateAccess(ctx, out, refresh, device)
}

// evaluateRefresh runs the refresh side of the protocol: decode, expiry
// check, device binding check, then rotation when the token is inside the
// renewal window. The rotated token is persisted on the device record and
// used downstream.
func (r *Renewer) evaluateRefresh(ctx context.Context, out *Outcome) (*Claims, *models.Device, error) {
	claims, err := r.codec.Decode(out.RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	if claims.HasExpired() {
		// Terminal: an expired refresh token is never renewed.
		return nil, nil, common.ErrRefreshTokenExpired
	}

	device, err := r.lookupDevice(ctx, claims.DeviceID())
	if err != nil {
		return nil, nil, err
	}

	if !claims.ShouldRenew(r.windowDays) {
		return claims, device, nil
	}

	rotated, err := r.issuer.RenewRefreshToken(claims, DeviceInfo{Name: device.Name, Signature: device.Signature})
	if err != nil {
		return nil, nil, err
	}
	if err := r.devices.UpdateTokens(ctx, device.ID, "", rotated); err != nil {
		return nil, nil, fmt.Errorf("persisting rotated refresh token: %w", err)
	}

	out.RefreshToken = rotated
	out.RefreshRotated = true
	return claims, device, nil
}

// evaluateAccess runs the access side once the refresh side has passed. A
// decode failure here is tolerated: a corrupt access token next to a healthy,
// device-bound refresh token is the normal renewal case, not an attack
// signal. The device binding was already established from the refresh token
// in the same request, so a garbage access token cannot bypass it.
func (r *Renewer) evaluateAccess(ctx context.Context, out *Outcome, refresh *Claims, device *models.Device) error {
	claims, err := r.codec.Decode(out.AccessToken)
	if err == nil && !claims.HasExpired() && !claims.ShouldRenew(r.windowDays) {
		out.Access = claims
		return nil
	}

	user, err := r.accounts.FindUser(ctx, device.UserID)
	if err != nil {
		return fmt.Errorf("loading user %s: %w", device.UserID, err)
	}
	cred, err := r.accounts.FindCredential(ctx, device.CredentialID)
	if err != nil {
		return fmt.Errorf("loading credential %s: %w", device.CredentialID, err)
	}

	minted, err := r.issuer.IssueAccessToken(user, cred, refresh.DeviceID())
	if err != nil {
		return err
	}
	if err := r.devices.UpdateTokens(ctx, device.ID, minted, ""); err != nil {
		return fmt.Errorf("persisting renewed access token: %w", err)
	}

	out.AccessToken = minted
	out.AccessRotated = true
	out.Access, err = r.codec.Decode(minted)
	return err
}

// checkBareAccess handles a request that carries only an access token. With
// no refresh token there is nothing to renew with, so the token must stand on
// its own.
func (r *Renewer) checkBareAccess(out *Outcome) error {
	claims, err := r.codec.Decode(out.AccessToken)
	if err != nil {
		return err
	}
	if claims.HasExpired() {
		return common.ErrInvalidToken
	}
	out.Access = claims
	return nil
}

func (r *Renewer) lookupDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	if deviceID == "" {
		return nil, common.ErrDeviceNotRegistered
	}
	device, err := r.devices.FindByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The record was deleted or superseded: an effective revocation,
			// whatever the token's signature says.
			return nil, common.ErrDeviceNotRegistered
		}
		return nil, fmt.Errorf("device lookup: %w", err)
	}
	return device, nil
}
