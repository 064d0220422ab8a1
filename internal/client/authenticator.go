package client

import (
	"fmt"
	"strings"

	"github.com/filswan/go-swan-lib/logs"
)

// Authenticator exchanges credentials for an access token. An API key is
// used as the bearer token directly; email/password go through /login.
type Authenticator struct {
	email    string
	password string
	apiKey   string
	http     *HTTPClient
}

func NewAuthenticator(baseUrl, email, password, apiKey string, timeoutSeconds, maxRetries int) (*Authenticator, error) {
	if apiKey == "" && (email == "" || password == "") {
		return nil, fmt.Errorf("either api key or email/password must be provided")
	}
	return &Authenticator{
		email:    email,
		password: password,
		apiKey:   apiKey,
		http:     NewHTTPClient(baseUrl, "", timeoutSeconds, maxRetries),
	}, nil
}

func (a *Authenticator) GetAccessToken() (string, error) {
	if a.apiKey != "" {
		return a.apiKey, nil
	}

	logs.GetLogger().Debugf("authenticating user %s", a.email)
	body := map[string]string{"email": a.email, "password": a.password}
	data, err := a.http.Request("POST", "/login", body, nil)
	if err != nil {
		return "", &AuthError{Message: "login request failed", Err: err}
	}

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := ParseJSON(data, &loginResp, "login response"); err != nil {
		return "", &AuthError{Message: "invalid login response", Err: err}
	}
	if strings.TrimSpace(loginResp.AccessToken) == "" {
		return "", &AuthError{Message: "no access token received"}
	}
	return loginResp.AccessToken, nil
}
