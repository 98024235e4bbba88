package orgsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// TokenSource supplies identity provider access tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("orgsdk: empty access token")
	}
	return string(t), nil
}

// Session performs authenticated requests. It is safe for concurrent use
// if its TokenSource is.
type Session struct {
	client *SDKClient
	token  TokenSource
}

func (s *Session) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token, err := s.token.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.doRequest(ctx, method, path, body, token)
}

func (s *Session) getJSON(ctx context.Context, path string, target any) error {
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

func pathID(id string) string { return url.PathEscape(id) }
