// Package social fetches user profiles from OAuth identity providers.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/osenouci/tokenkeeper/internal/common"
)

// Profile is the provider-independent identity returned by a fetcher.
type Profile struct {
	ID       string
	Name     string
	Email    string
	Gender   string
	Language string
	Photo    string
	Verified bool
}

// ProfileFetcher resolves a provider token into a Profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*Profile, error)
}

const (
	DefaultGoogleURL   = "https://www.googleapis.com/oauth2/v3/tokeninfo"
	DefaultFacebookURL = "https://graph.facebook.com/v2.10/me"
)

func fetchJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider returned status %d", common.ErrorUnauthorized, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GoogleFetcher validates a Google ID token against the tokeninfo endpoint.
type GoogleFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewGoogleFetcher() *GoogleFetcher {
	return &GoogleFetcher{BaseURL: DefaultGoogleURL, Client: http.DefaultClient}
}

func (g *GoogleFetcher) FetchProfile(ctx context.Context, idToken string) (*Profile, error) {

	var body struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		Locale        string `json:"locale"`
		Picture       string `json:"picture"`
		EmailVerified string `json:"email_verified"`
	}

	u := g.BaseURL + "?id_token=" + url.QueryEscape(idToken)
	if err := fetchJSON(ctx, g.Client, u, &body); err != nil {
		return nil, err
	}
	if body.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", common.ErrorUnauthorized)
	}

	return &Profile{
		ID:       body.Sub,
		Name:     body.Name,
		Email:    body.Email,
		Language: body.Locale,
		Photo:    body.Picture,
		Verified: body.EmailVerified == "true",
	}, nil
}

// FacebookFetcher resolves an access token via the Graph API.
type FacebookFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewFacebookFetcher() *FacebookFetcher {
	return &FacebookFetcher{BaseURL: DefaultFacebookURL, Client: http.DefaultClient}
}

func (f *FacebookFetcher) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {

	var body struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Gender  string `json:"gender"`
		Locale  string `json:"locale"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}

	u := f.BaseURL + "?fields=id,name,email,gender,locale,picture&access_token=" + url.QueryEscape(accessToken)
	if err := fetchJSON(ctx, f.Client, u, &body); err != nil {
		return nil, err
	}
	if body.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", common.ErrorUnauthorized)
	}

	return &Profile{
		ID:       body.ID,
		Name:     body.Name,
		Email:    body.Email,
		Gender:   body.Gender,
		Language: body.Locale,
		Photo:    body.Picture.Data.URL,
		// Facebook does not report verification status; treat as verified.
		Verified: true,
	}, nil
}
