// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, local and social login, device
// listing/revocation, and delegates token checks to the renewal orchestrator.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/dbx"
	"github.com/osenouci/tokenkeeper/internal/logging"
	"github.com/osenouci/tokenkeeper/internal/password"
	"github.com/osenouci/tokenkeeper/internal/server/config"
	"github.com/osenouci/tokenkeeper/internal/server/models"
	"github.com/osenouci/tokenkeeper/internal/server/repositories/repomanager"
	"github.com/osenouci/tokenkeeper/internal/server/social"
	"github.com/osenouci/tokenkeeper/internal/server/token"
)

const defaultLanguage = "en"

// AuthService provides account and session operations:
//   - Register / Activate: local account creation
//   - Login / LoginWithGoogle / LoginWithFacebook: credential checks and first-pair issuance
//   - Check: access/refresh evaluation through the renewal orchestrator
//   - Devices / RevokeDevice: registry listing and explicit revocation
type AuthService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	codec             *token.Codec
	issuer            *token.Issuer
	renewer           *token.Renewer
	google            social.ProfileFetcher
	facebook          social.ProfileFetcher
	minPasswordLength int
	logger            logging.Logger
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	google, facebook social.ProfileFetcher, logger logging.Logger) *AuthService {

	codec := token.NewCodec(cfg.SigningSecret)
	issuer := token.NewIssuer(codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.RefreshTokenNonceLength)
	registry := &deviceRegistry{db: db, repomanager: m}
	accounts := &accountStore{db: db, repomanager: m}

	return &AuthService{
		db:                db,
		repomanager:       m,
		codec:             codec,
		issuer:            issuer,
		renewer:           token.NewRenewer(codec, issuer, registry, accounts, cfg.RenewalWindowDays),
		google:            google,
		facebook:          facebook,
		minPasswordLength: cfg.MinPasswordLength,
		logger:            logger,
	}
}

// deviceRegistry adapts the devices repository to the orchestrator's
// DeviceRegistry contract.
type deviceRegistry struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func (r *deviceRegistry) FindByID(ctx context.Context, deviceID string) (*models.Device, error) {
	return r.repomanager.Devices(r.db).FindByID(ctx, deviceID)
}

func (r *deviceRegistry) UpdateTokens(ctx context.Context, deviceID, accessToken, refreshToken string) error {
	return r.repomanager.Devices(r.db).UpdateTokens(ctx, deviceID, accessToken, refreshToken)
}

// accountStore adapts the users and credentials repositories to the
// orchestrator's AccountStore contract.
type accountStore struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func (s *accountStore) FindUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).FindByID(ctx, userID)
}

func (s *accountStore) FindCredential(ctx context.Context, credentialID string) (*models.Credential, error) {
	return s.repomanager.Credentials(s.db).FindByID(ctx, credentialID)
}

// Register creates a local account. The account starts inactive; Activate
// flips it once the owner confirms.
func (s *AuthService) Register(ctx context.Context, name, email, pass, gender, language string) (*models.User, error) {
	if !models.EmailValid(email) {
		return nil, common.ErrInvalidEmail
	}
	if len(pass) < s.minPasswordLength || strings.ContainsAny(pass, " \t") {
		return nil, common.ErrInvalidPassword
	}

	if _, err := s.repomanager.Credentials(s.db).FindByEmail(ctx, email, models.CredentialLocal); err == nil {
		return nil, common.ErrAccountExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if language == "" {
		language = defaultLanguage
	}

	var user *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		user, txErr = s.repomanager.Users(tx).Create(ctx, &models.User{Name: name, Gender: gender, Language: language})
		if txErr != nil {
			return fmt.Errorf("error creating user: %w", txErr)
		}
		_, txErr = s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			UserID:       user.ID,
			Kind:         models.CredentialLocal,
			Email:        email,
			PasswordHash: hash,
		})
		if txErr != nil {
			return fmt.Errorf("error creating credential: %w", txErr)
		}
		return nil
	}); err != nil {
		s.logger.Error(ctx, "registration failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Activate marks the account as confirmed.
func (s *AuthService) Activate(ctx context.Context, userID string) error {
	return s.repomanager.Users(s.db).Activate(ctx, userID)
}

// Login verifies a local email/password pair and, on success, registers the
// device and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, pass string, device token.DeviceInfo) (*token.Pair, error) {
	cred, err := s.findLocalCredential(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := password.Verify(pass, cred.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrWrongPassword
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, cred.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !user.Activated {
		return nil, common.ErrAccountInactive
	}

	return s.issueFirstPair(ctx, user, cred, device)
}

// findLocalCredential distinguishes "no such account" from "that email is a
// social account" so the client can route the user to the right login flow.
func (s *AuthService) findLocalCredential(ctx context.Context, email string) (*models.Credential, error) {
	creds := s.repomanager.Credentials(s.db)

	cred, err := creds.FindByEmail(ctx, email, models.CredentialLocal)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	for _, kind := range []string{models.CredentialGoogle, models.CredentialFacebook} {
		if _, err := creds.FindByEmail(ctx, email, kind); err == nil {
			return nil, common.ErrSocialAccount
		}
	}
	return nil, common.ErrAccountDoesNotExist
}

// LoginWithGoogle resolves the Google ID token to a profile and logs into the
// matching google-kind account.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string, device token.DeviceInfo) (*token.Pair, error) {
	profile, err := s.google.FetchProfile(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.loginSocial(ctx, profile, models.CredentialGoogle, device)
}

// LoginWithFacebook resolves the Facebook access token to a profile and logs
// into the matching facebook-kind account.
func (s *AuthService) LoginWithFacebook(ctx context.Context, accessToken string, device token.DeviceInfo) (*token.Pair, error) {
	profile, err := s.facebook.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.loginSocial(ctx, profile, models.CredentialFacebook, device)
}

// RegisterWithGoogle logs in when the google account already exists and
// creates it otherwise.
func (s *AuthService) RegisterWithGoogle(ctx context.Context, idToken string, device token.DeviceInfo) (*token.Pair, error) {
	profile, err := s.google.FetchProfile(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.loginOrCreateSocial(ctx, profile, models.CredentialGoogle, device)
}

// RegisterWithFacebook logs in when the facebook account already exists and
// creates it otherwise.
func (s *AuthService) RegisterWithFacebook(ctx context.Context, accessToken string, device token.DeviceInfo) (*token.Pair, error) {
	profile, err := s.facebook.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.loginOrCreateSocial(ctx, profile, models.CredentialFacebook, device)
}

// Check evaluates a presented token pair through the renewal orchestrator.
func (s *AuthService) Check(ctx context.Context, presented token.Pair) (*token.Outcome, error) {
	return s.renewer.Renew(ctx, presented)
}

// Devices lists the registry records for an account.
func (s *AuthService) Devices(ctx context.Context, userID string) ([]*models.Device, error) {
	return s.repomanager.Devices(s.db).ListByUser(ctx, userID)
}

// RevokeDevice removes a device record; its tokens die at their next
// presentation.
func (s *AuthService) RevokeDevice(ctx context.Context, name, userID string) error {
	return s.repomanager.Devices(s.db).Delete(ctx, name, userID)
}

// --- helpers below ---

func (s *AuthService) loginSocial(ctx context.Context, profile *social.Profile, kind string, device token.DeviceInfo) (*token.Pair, error) {
	cred, err := s.repomanager.Credentials(s.db).FindByEmail(ctx, profile.Email, kind)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountDoesNotExist
		}
		return nil, common.ErrorInternal
	}
	user, err := s.repomanager.Users(s.db).FindByID(ctx, cred.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return s.issueFirstPair(ctx, user, cred, device)
}

func (s *AuthService) loginOrCreateSocial(ctx context.Context, profile *social.Profile, kind string, device token.DeviceInfo) (*token.Pair, error) {
	pair, err := s.loginSocial(ctx, profile, kind, device)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, common.ErrAccountDoesNotExist) {
		return nil, err
	}

	language := profile.Language
	if language == "" {
		language = defaultLanguage
	}

	var user *models.User
	var cred *models.Credential
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		// Provider-verified identities skip the activation step.
		user, txErr = s.repomanager.Users(tx).Create(ctx, &models.User{
			Name:      profile.Name,
			Gender:    profile.Gender,
			Language:  language,
			Activated: true,
		})
		if txErr != nil {
			return fmt.Errorf("error creating user: %w", txErr)
		}
		cred, txErr = s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			UserID: user.ID,
			Kind:   kind,
			Email:  profile.Email,
		})
		if txErr != nil {
			return fmt.Errorf("error creating credential: %w", txErr)
		}
		return nil
	}); err != nil {
		s.logger.Error(ctx, "social signup failed", "kind", kind, "error", err)
		return nil, common.ErrorInternal
	}

	return s.issueFirstPair(ctx, user, cred, device)
}

// issueFirstPair registers (or supersedes) the device record and binds a
// freshly minted pair to it. The supersede delete and the insert must land
// in the same transaction.
func (s *AuthService) issueFirstPair(ctx context.Context, user *models.User, cred *models.Credential, device token.DeviceInfo) (*token.Pair, error) {
	var record *models.Device
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		record, txErr = s.repomanager.Devices(tx).CreateOrReplace(ctx, device.Name, device.Signature, user.ID, cred.ID)
		return txErr
	}); err != nil {
		return nil, common.ErrorInternal
	}

	devices := s.repomanager.Devices(s.db)

	refresh, err := s.issuer.IssueRefreshToken(device, record.ID, user.ID)
	if err != nil {
		return nil, err
	}
	access, err := s.issuer.IssueAccessToken(user, cred, record.ID)
	if err != nil {
		return nil, err
	}

	if err := devices.UpdateTokens(ctx, record.ID, access, refresh); err != nil {
		return nil, common.ErrorInternal
	}

	return &token.Pair{AccessToken: access, RefreshToken: refresh}, nil
}
