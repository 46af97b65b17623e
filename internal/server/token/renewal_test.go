package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/server/models"
	"github.com/osenouci/tokenkeeper/internal/timex"
)

// --- fakes ---

type fakeRegistry struct {
	records map[string]*models.Device

	findCalls   int
	updateCalls int

	lastAccess  string
	lastRefresh string

	updateErr error
}

func (f *fakeRegistry) FindByID(_ context.Context, deviceID string) (*models.Device, error) {
	f.findCalls++
	d, ok := f.records[deviceID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (f *fakeRegistry) UpdateTokens(_ context.Context, deviceID, accessToken, refreshToken string) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	d, ok := f.records[deviceID]
	if !ok {
		return common.ErrorNotFound
	}
	if accessToken != "" {
		d.AccessToken = accessToken
		f.lastAccess = accessToken
	}
	if refreshToken != "" {
		d.RefreshToken = refreshToken
		f.lastRefresh = refreshToken
	}
	return nil
}

type fakeAccounts struct {
	user *models.User
	cred *models.Credential
}

func (f *fakeAccounts) FindUser(context.Context, string) (*models.User, error) {
	if f.user == nil {
		return nil, common.ErrorNotFound
	}
	return f.user, nil
}

func (f *fakeAccounts) FindCredential(context.Context, string) (*models.Credential, error) {
	if f.cred == nil {
		return nil, common.ErrorNotFound
	}
	return f.cred, nil
}

type renewFixture struct {
	codec    *Codec
	issuer   *Issuer
	registry *fakeRegistry
	renewer  *Renewer
}

func newRenewFixture(t *testing.T) *renewFixture {
	t.Helper()
	codec := NewCodec(testSecret)
	issuer := NewIssuer(codec, timex.Days(1), timex.Days(30), 64)
	registry := &fakeRegistry{records: map[string]*models.Device{
		"device-1": {
			ID:           "device-1",
			UserID:       "user-1",
			CredentialID: "cred-1",
			Name:         "pixel-7",
			Signature:    "sig",
		},
	}}
	accounts := &fakeAccounts{
		user: &models.User{ID: "user-1", Name: "Alice", Activated: true},
		cred: &models.Credential{ID: "cred-1", UserID: "user-1", Email: "alice@example.org"},
	}
	return &renewFixture{
		codec:    codec,
		issuer:   issuer,
		registry: registry,
		renewer:  NewRenewer(codec, issuer, registry, accounts, 5),
	}
}

// mintRefresh signs a refresh-shaped token with an arbitrary remaining
// lifetime, standing in for a 30d token observed some days before expiry.
func (f *renewFixture) mintRefresh(t *testing.T, remaining time.Duration) string {
	t.Helper()
	payload := map[string]string{
		KeyUserID:          "user-1",
		KeyDeviceID:        "device-1",
		KeyDeviceName:      "pixel-7",
		KeyDeviceSignature: "sig",
		KeyRandom:          "ABCDEF",
	}
	if remaining <= 0 {
		return mintWithExpiry(t, testSecret, payload, time.Now().Add(remaining))
	}
	s, err := f.codec.Mint(payload, remaining)
	require.NoError(t, err)
	return s
}

func (f *renewFixture) mintAccess(t *testing.T, remaining time.Duration) string {
	t.Helper()
	payload := map[string]string{
		KeyUserID:   "user-1",
		KeyEmail:    "alice@example.org",
		KeyName:     "Alice",
		KeyDeviceID: "device-1",
	}
	if remaining <= 0 {
		return mintWithExpiry(t, testSecret, payload, time.Now().Add(remaining))
	}
	s, err := f.codec.Mint(payload, remaining)
	require.NoError(t, err)
	return s
}

// --- tests ---

func TestRenew_NoTokens(t *testing.T) {
	f := newRenewFixture(t)

	_, err := f.renewer.Renew(context.Background(), Pair{})

	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Zero(t, f.registry.findCalls, "no registry calls without tokens")
	assert.Zero(t, f.registry.updateCalls)
}

func TestRenew_RefreshPassThroughOutsideWindow(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))

	out, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	require.NoError(t, err)
	assert.Equal(t, refresh, out.RefreshToken)
	assert.False(t, out.RefreshRotated)
	assert.Zero(t, f.registry.updateCalls)
}

func TestRenew_RefreshRotatesInsideWindow(t *testing.T) {
	f := newRenewFixture(t)
	// A 30d token 26 days into its life: 4 days remain, window is 5.
	refresh := f.mintRefresh(t, timex.Days(4))

	out, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	require.NoError(t, err)
	assert.True(t, out.RefreshRotated)
	assert.NotEqual(t, refresh, out.RefreshToken)
	assert.Equal(t, out.RefreshToken, f.registry.lastRefresh, "rotated token persisted on the device record")

	claims, err := f.codec.Decode(out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "device-1", claims.DeviceID())
	assert.Equal(t, "user-1", claims.UserID())
}

func TestRenew_ExpiredRefreshIsTerminal(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, -time.Hour)

	_, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.True(t, common.ForceReLogin(err))
	assert.Zero(t, f.registry.findCalls, "expiry check precedes the registry lookup")
}

func TestRenew_DeletedDeviceRejects(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))

	// Revocation: the record disappears while the token stays valid.
	delete(f.registry.records, "device-1")

	_, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	assert.ErrorIs(t, err, common.ErrDeviceNotRegistered)
	assert.True(t, common.ForceReLogin(err))
}

func TestRenew_SupersededDeviceRejects(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))

	// The device was re-registered under the same name: same (name, user),
	// new record ID. The old token's binding must not survive that.
	delete(f.registry.records, "device-1")
	f.registry.records["device-2"] = &models.Device{
		ID: "device-2", UserID: "user-1", CredentialID: "cred-1", Name: "pixel-7", Signature: "sig",
	}

	_, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	assert.ErrorIs(t, err, common.ErrDeviceNotRegistered)
}

func TestRenew_MalformedRefreshRejects(t *testing.T) {
	f := newRenewFixture(t)

	_, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: "garbage"})

	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Zero(t, f.registry.findCalls)
}

func TestRenew_CorruptAccessWithHealthyRefresh(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))

	out, err := f.renewer.Renew(context.Background(), Pair{
		AccessToken:  "corrupted-beyond-repair",
		RefreshToken: refresh,
	})

	require.NoError(t, err, "a garbage access token is a renewal case, not a rejection")
	assert.True(t, out.AccessRotated)
	assert.False(t, out.RefreshRotated)
	require.NotNil(t, out.Access)
	assert.Equal(t, "user-1", out.Access.UserID())
	assert.Equal(t, "device-1", out.Access.DeviceID())
	assert.Equal(t, out.AccessToken, f.registry.lastAccess)
}

func TestRenew_ExpiredAccessWithHealthyRefresh(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))
	access := f.mintAccess(t, -time.Minute)

	out, err := f.renewer.Renew(context.Background(), Pair{AccessToken: access, RefreshToken: refresh})

	require.NoError(t, err)
	assert.True(t, out.AccessRotated)
	assert.NotEqual(t, access, out.AccessToken)
}

func TestRenew_FreshAccessPassesThrough(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(20))
	access := f.mintAccess(t, timex.Days(10)) // well outside the 5-day window

	out, err := f.renewer.Renew(context.Background(), Pair{AccessToken: access, RefreshToken: refresh})

	require.NoError(t, err)
	assert.False(t, out.AccessRotated)
	assert.Equal(t, access, out.AccessToken)
	require.NotNil(t, out.Access)
	assert.Equal(t, "user-1", out.Access.UserID())
	assert.Zero(t, f.registry.updateCalls)
}

func TestRenew_BothRotateTogether(t *testing.T) {
	f := newRenewFixture(t)
	refresh := f.mintRefresh(t, timex.Days(4))
	access := f.mintAccess(t, -time.Minute)

	out, err := f.renewer.Renew(context.Background(), Pair{AccessToken: access, RefreshToken: refresh})

	require.NoError(t, err)
	assert.True(t, out.RefreshRotated)
	assert.True(t, out.AccessRotated)

	// The invariant: both final tokens name the same device.
	refreshClaims, err := f.codec.Decode(out.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, out.Access)
	assert.Equal(t, refreshClaims.DeviceID(), out.Access.DeviceID())
}

func TestRenew_AccessOnlyValidPassesThrough(t *testing.T) {
	f := newRenewFixture(t)
	access := f.mintAccess(t, time.Hour)

	out, err := f.renewer.Renew(context.Background(), Pair{AccessToken: access})

	require.NoError(t, err)
	assert.Equal(t, access, out.AccessToken)
	assert.Empty(t, out.RefreshToken)
	require.NotNil(t, out.Access)
	assert.Zero(t, f.registry.findCalls, "no binding check possible or needed without a refresh token")
}

func TestRenew_AccessOnlyExpiredRejects(t *testing.T) {
	f := newRenewFixture(t)
	access := f.mintAccess(t, -time.Minute)

	_, err := f.renewer.Renew(context.Background(), Pair{AccessToken: access})

	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.False(t, common.ForceReLogin(err))
}

func TestRenew_RegistryWriteFailureSurfaces(t *testing.T) {
	f := newRenewFixture(t)
	f.registry.updateErr = assert.AnError
	refresh := f.mintRefresh(t, timex.Days(4))

	_, err := f.renewer.Renew(context.Background(), Pair{RefreshToken: refresh})

	assert.ErrorIs(t, err, assert.AnError)
}
