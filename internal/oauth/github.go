package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

type GitHub struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authURL   string
	tokenURL  string
	userURL   string
	emailsURL string
	client    *http.Client
}

func NewGitHub(clientID, clientSecret, redirectURI string) *GitHub {
	return &GitHub{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      "https://github.com/login/oauth/authorize",
		tokenURL:     "https://github.com/login/oauth/access_token",
		userURL:      "https://api.github.com/user",
		emailsURL:    "https://api.github.com/user/emails",
		client:       defaultClient,
	}
}

func (g *GitHub) Name() domain.Provider { return domain.ProviderGitHub }

func (g *GitHub) AuthCodeURL() string {
	params := url.Values{
		"client_id":    {g.clientID},
		"redirect_uri": {g.redirectURI},
		"scope":        {"read:user user:email"},
	}
	return g.authURL + "?" + params.Encode()
}

func (g *GitHub) Exchange(ctx context.Context, code string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := postJSON(ctx, g.client, g.tokenURL, map[string]string{
		"client_id":     g.clientID,
		"client_secret": g.clientSecret,
		"code":          code,
		"redirect_uri":  g.redirectURI,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("github: empty access token")
	}
	return out.AccessToken, nil
}

func (g *GitHub) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var info struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, g.client, g.userURL, accessToken, &info); err != nil {
		return nil, err
	}

	email := info.Email
	if email == "" {
		// Users can keep their email private; the emails endpoint still
		// lists it for the user:email scope.
		primary, err := g.fetchPrimaryEmail(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		email = primary
	}
	if email == "" {
		return nil, errors.New("github: no verified primary email")
	}

	name := info.Name
	if name == "" {
		name = "GitHub User"
	}
	return &Profile{
		ExternalID: strconv.FormatInt(info.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  info.AvatarURL,
	}, nil
}

func (g *GitHub) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, g.client, g.emailsURL, accessToken, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}
