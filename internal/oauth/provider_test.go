package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonHandler(t *testing.T, status int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

// ---- Google ----

func newTestGoogle(tokenSrv, userinfoSrv *httptest.Server) *Google {
	g := NewGoogle("client-id", "client-secret", "http://localhost:8080/oauth/google/callback")
	if tokenSrv != nil {
		g.tokenURL = tokenSrv.URL
	}
	if userinfoSrv != nil {
		g.userinfoURL = userinfoSrv.URL
	}
	return g
}

func TestGoogleAuthCodeURL_CarriesClientAndScopes(t *testing.T) {
	u := newTestGoogle(nil, nil).AuthCodeURL()

	for _, want := range []string{
		"accounts.google.com",
		"client_id=client-id",
		"response_type=code",
		"scope=openid+email+profile",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("auth URL missing %q: %s", want, u)
		}
	}
}

func TestGoogleExchange_ReturnsAccessToken(t *testing.T) {
	var gotBody map[string]string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode exchange body: %v", err)
		}
		jsonHandler(t, http.StatusOK, map[string]string{"access_token": "at-123"})(w, r)
	}))
	defer tokenSrv.Close()

	token, err := newTestGoogle(tokenSrv, nil).Exchange(context.Background(), "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "at-123" {
		t.Errorf("token = %q", token)
	}
	if gotBody["code"] != "authcode" || gotBody["grant_type"] != "authorization_code" {
		t.Errorf("exchange request body = %v", gotBody)
	}
}

func TestGoogleExchange_ProviderErrorFails(t *testing.T) {
	tokenSrv := httptest.NewServer(jsonHandler(t, http.StatusBadRequest,
		map[string]string{"error": "invalid_grant"}))
	defer tokenSrv.Close()

	if _, err := newTestGoogle(tokenSrv, nil).Exchange(context.Background(), "expired"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestGoogleFetchProfile_MapsFieldsAndVerifiedSignal(t *testing.T) {
	userinfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-123" {
			t.Errorf("Authorization = %q", got)
		}
		jsonHandler(t, http.StatusOK, map[string]any{
			"sub":            "google-1",
			"name":           "Alice",
			"email":          "alice@example.com",
			"picture":        "https://img/alice.png",
			"email_verified": false,
		})(w, r)
	}))
	defer userinfoSrv.Close()

	profile, err := newTestGoogle(nil, userinfoSrv).FetchProfile(context.Background(), "at-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ExternalID != "google-1" || profile.Email != "alice@example.com" {
		t.Errorf("profile = %+v", profile)
	}
	if profile.EmailVerified == nil || *profile.EmailVerified {
		t.Error("email_verified=false not propagated")
	}
}

// ---- GitHub ----

func TestGitHubFetchProfile_FallsBackToPrimaryVerifiedEmail(t *testing.T) {
	userSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"id":         int64(42),
		"name":       "",
		"email":      "", // private email
		"avatar_url": "https://img/bob.png",
	}))
	defer userSrv.Close()

	emailsSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, []map[string]any{
		{"email": "old@example.com", "primary": false, "verified": true},
		{"email": "bob@example.com", "primary": true, "verified": true},
	}))
	defer emailsSrv.Close()

	g := NewGitHub("client-id", "client-secret", "http://localhost:8080/oauth/github/callback")
	g.userURL = userSrv.URL
	g.emailsURL = emailsSrv.URL

	profile, err := g.FetchProfile(context.Background(), "at-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Email != "bob@example.com" {
		t.Errorf("email = %q", profile.Email)
	}
	if profile.ExternalID != "42" {
		t.Errorf("external id = %q", profile.ExternalID)
	}
	if profile.Name != "GitHub User" {
		t.Errorf("fallback name = %q", profile.Name)
	}
	if profile.EmailVerified != nil {
		t.Error("github exposes no verified signal; expected nil")
	}
}

func TestGitHubFetchProfile_NoVerifiedEmailFails(t *testing.T) {
	userSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{"id": int64(42)}))
	defer userSrv.Close()

	emailsSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, []map[string]any{
		{"email": "bob@example.com", "primary": true, "verified": false},
	}))
	defer emailsSrv.Close()

	g := NewGitHub("client-id", "client-secret", "http://localhost:8080/oauth/github/callback")
	g.userURL = userSrv.URL
	g.emailsURL = emailsSrv.URL

	if _, err := g.FetchProfile(context.Background(), "at-123"); err == nil {
		t.Fatal("expected an error")
	}
}

// ---- Facebook ----

func TestFacebookExchange_PassesCredentialsAsQuery(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client_id") != "client-id" || q.Get("code") != "authcode" {
			t.Errorf("query = %v", q)
		}
		jsonHandler(t, http.StatusOK, map[string]string{"access_token": "at-fb"})(w, r)
	}))
	defer tokenSrv.Close()

	f := NewFacebook("client-id", "client-secret", "http://localhost:8080/oauth/facebook/callback")
	f.tokenURL = tokenSrv.URL

	token, err := f.Exchange(context.Background(), "authcode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "at-fb" {
		t.Errorf("token = %q", token)
	}
}

func TestFacebookFetchProfile_PhoneOnlyAccountFails(t *testing.T) {
	profileSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"id":   "fb-1",
		"name": "Bob",
	}))
	defer profileSrv.Close()

	f := NewFacebook("client-id", "client-secret", "http://localhost:8080/oauth/facebook/callback")
	f.profileURL = profileSrv.URL

	if _, err := f.FetchProfile(context.Background(), "at-fb"); err == nil {
		t.Fatal("expected an error for a profile without email")
	}
}

func TestFacebookFetchProfile_ReadsNestedPicture(t *testing.T) {
	profileSrv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"id":    "fb-1",
		"name":  "Bob",
		"email": "bob@example.com",
		"picture": map[string]any{
			"data": map[string]any{"url": "https://img/bob.png"},
		},
	}))
	defer profileSrv.Close()

	f := NewFacebook("client-id", "client-secret", "http://localhost:8080/oauth/facebook/callback")
	f.profileURL = profileSrv.URL

	profile, err := f.FetchProfile(context.Background(), "at-fb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.AvatarURL != "https://img/bob.png" {
		t.Errorf("avatar = %q", profile.AvatarURL)
	}
}
