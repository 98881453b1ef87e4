package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

type Google struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authURL     string
	tokenURL    string
	userinfoURL string
	client      *http.Client
}

func NewGoogle(clientID, clientSecret, redirectURI string) *Google {
	return &Google{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:     "https://oauth2.googleapis.com/token",
		userinfoURL:  "https://www.googleapis.com/oauth2/v3/userinfo",
		client:       defaultClient,
	}
}

func (g *Google) Name() domain.Provider { return domain.ProviderGoogle }

func (g *Google) AuthCodeURL() string {
	params := url.Values{
		"client_id":     {g.clientID},
		"redirect_uri":  {g.redirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return g.authURL + "?" + params.Encode()
}

func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := postJSON(ctx, g.client, g.tokenURL, map[string]string{
		"code":          code,
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
		"redirect_uri":  g.redirectURI,
		"grant_type":    "authorization_code",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("google: empty access token")
	}
	return out.AccessToken, nil
}

func (g *Google) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var info struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := getJSON(ctx, g.client, g.userinfoURL, accessToken, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, errors.New("google: profile has no email")
	}

	verified := info.EmailVerified
	return &Profile{
		ExternalID:    info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		AvatarURL:     info.Picture,
		EmailVerified: &verified,
	}, nil
}
