// Package identity talks to the identity provider: it builds the interactive
// login URL and turns authorization codes into access tokens.
package identity

import (
	"strings"

	"golang.org/x/oauth2"

	"aiproxy/internal/platform/config"
)

// Scopes requested from the provider, in the order they are sent.
var Scopes = []string{"openid", "profile", "email"}

// OAuthConfig describes the provider as an oauth2 client for redirectURI.
func OAuthConfig(cfg config.Identity, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthorizeURL(),
			TokenURL:  cfg.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL is the provider's interactive-login URL. The provider sends
// the browser back to redirectURI with the code and echoes state verbatim.
func AuthorizeURL(cfg config.Identity, redirectURI, state string) string {
	return OAuthConfig(cfg, redirectURI).AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_mode", "query"),
	)
}

func scopeParam() string {
	return strings.Join(Scopes, " ")
}
