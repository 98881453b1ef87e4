package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/zazaborisovi/laptomania/internal/domain"
)

type Facebook struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authURL    string
	tokenURL   string
	profileURL string
	client     *http.Client
}

func NewFacebook(clientID, clientSecret, redirectURI string) *Facebook {
	return &Facebook{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      "https://www.facebook.com/v17.0/dialog/oauth",
		tokenURL:     "https://graph.facebook.com/v17.0/oauth/access_token",
		profileURL:   "https://graph.facebook.com/me",
		client:       defaultClient,
	}
}

func (f *Facebook) Name() domain.Provider { return domain.ProviderFacebook }

func (f *Facebook) AuthCodeURL() string {
	params := url.Values{
		"client_id":    {f.clientID},
		"redirect_uri": {f.redirectURI},
		"scope":        {"public_profile,email"},
	}
	return f.authURL + "?" + params.Encode()
}

func (f *Facebook) Exchange(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"client_id":     {f.clientID},
		"client_secret": {f.clientSecret},
		"redirect_uri":  {f.redirectURI},
		"code":          {code},
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := getJSON(ctx, f.client, f.tokenURL+"?"+params.Encode(), "", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("facebook: empty access token")
	}
	return out.AccessToken, nil
}

func (f *Facebook) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	params := url.Values{
		"fields":       {"id,name,email,picture"},
		"access_token": {accessToken},
	}
	var info struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := getJSON(ctx, f.client, f.profileURL+"?"+params.Encode(), "", &info); err != nil {
		return nil, err
	}
	// Facebook accounts registered by phone number have no email.
	if info.Email == "" {
		return nil, errors.New("facebook: profile has no email")
	}

	name := info.Name
	if name == "" {
		name = "Facebook User"
	}
	return &Profile{
		ExternalID: info.ID,
		Email:      info.Email,
		Name:       name,
		AvatarURL:  info.Picture.Data.URL,
	}, nil
}
