package orgsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the organization service. It covers the public
// endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new organization service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession returns a session that authenticates with the given identity
// provider access token.
func (c *SDKClient) NewSession(accessToken string) *Session {
	return &Session{client: c, token: StaticToken(accessToken)}
}

// NewSessionWithSource returns a session that asks src for a token before
// every request, so the caller can refresh tokens however it likes.
func (c *SDKClient) NewSessionWithSource(src TokenSource) *Session {
	return &Session{client: c, token: src}
}
