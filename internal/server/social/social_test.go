package social

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/osenouci/tokenkeeper/internal/common"
)

func TestGoogleFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_token"); got != "tok-123" {
			t.Errorf("unexpected id_token: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"10001","name":"Alice","email":"alice@example.com","locale":"nl","picture":"https://example.com/a.jpg","email_verified":"true"}`))
	}))
	defer srv.Close()

	g := &GoogleFetcher{BaseURL: srv.URL, Client: srv.Client()}
	p, err := g.FetchProfile(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if p.ID != "10001" || p.Email != "alice@example.com" || !p.Verified {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Language != "nl" || p.Photo != "https://example.com/a.jpg" {
		t.Fatalf("locale and picture must carry through: %+v", p)
	}
}

func TestGoogleFetcher_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	g := &GoogleFetcher{BaseURL: srv.URL, Client: srv.Client()}
	_, err := g.FetchProfile(context.Background(), "garbage")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestGoogleFetcher_NoEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sub":"10001"}`))
	}))
	defer srv.Close()

	g := &GoogleFetcher{BaseURL: srv.URL, Client: srv.Client()}
	_, err := g.FetchProfile(context.Background(), "tok")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestFacebookFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("access_token"); got != "fb-tok" {
			t.Errorf("unexpected access_token: %q", got)
		}
		if got := q.Get("fields"); got != "id,name,email,gender,locale,picture" {
			t.Errorf("unexpected fields: %q", got)
		}
		w.Write([]byte(`{"id":"777","name":"Bob","email":"bob@example.com","gender":"male","locale":"fr_FR","picture":{"data":{"url":"https://example.com/b.jpg"}}}`))
	}))
	defer srv.Close()

	f := &FacebookFetcher{BaseURL: srv.URL, Client: srv.Client()}
	p, err := f.FetchProfile(context.Background(), "fb-tok")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if p.ID != "777" || p.Gender != "male" || !p.Verified {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Language != "fr_FR" || p.Photo != "https://example.com/b.jpg" {
		t.Fatalf("locale and picture must carry through: %+v", p)
	}
}

func TestFacebookFetcher_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := &FacebookFetcher{BaseURL: srv.URL, Client: srv.Client()}
	_, err := f.FetchProfile(context.Background(), "garbage")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}
