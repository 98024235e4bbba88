package orgs_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for organization service end-to-end
 * tests. The test process plays the identity provider (JWKS + token minting)
 * and the webhook receiver; the service runs in a container.
 */

const (
	testImageName = "tenancy-orgs-test:latest"

	idpIssuer   = "https://idp.e2e.test"
	idpAudience = "orgs"
	idpKeyID    = "e2e-key-001"

	inviteBaseURL = "https://app.e2e.test/invite"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Orgs Service Docker image...")

	// Build the Docker image once before all tests
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	// Run all tests
	exitCode := m.Run()

	// Clean up the Docker image after all tests complete
	fmt.Fprintf(os.Stdout, "Cleaning up Orgs Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/orgs/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// identityProvider publishes a JWKS and mints access tokens for test users.
type identityProvider struct {
	priv   ed25519.PrivateKey
	server *httptest.Server
}

func newIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwks := jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewEd25519JWK(idpKeyID, pub)}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	return &identityProvider{priv: priv, server: server}
}

// token mints an access token for the given user.
func (p *identityProvider) token(t *testing.T, userID, email, name string) string {
	t.Helper()

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    idpIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{idpAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		Email:         email,
		PreferredName: name,
	})
	tok.Header["kid"] = idpKeyID

	s, err := tok.SignedString(p.priv)
	require.NoError(t, err)
	return s
}

// delivery is one webhook request as received.
type delivery struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	OrganizationID string          `json:"organization_id"`
	Data           json.RawMessage `json:"data"`
}

// webhookReceiver records every event the service delivers.
type webhookReceiver struct {
	mu       sync.Mutex
	received []delivery
	server   *httptest.Server
}

func newWebhookReceiver(t *testing.T) *webhookReceiver {
	t.Helper()

	rcv := &webhookReceiver{}
	rcv.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var d delivery
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rcv.mu.Lock()
		rcv.received = append(rcv.received, d)
		rcv.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(rcv.server.Close)

	return rcv
}

// waitFor blocks until an event of the given type matching fn has arrived.
func (rcv *webhookReceiver) waitFor(t *testing.T, eventType string, fn func(json.RawMessage) bool) delivery {
	t.Helper()

	var found delivery
	require.Eventually(t, func() bool {
		rcv.mu.Lock()
		defer rcv.mu.Unlock()
		for _, d := range rcv.received {
			if d.Type == eventType && fn(d.Data) {
				found = d
				return true
			}
		}
		return false
	}, 20*time.Second, 250*time.Millisecond, "no %s event delivered", eventType)

	return found
}

// env is a running service with its collaborators.
type env struct {
	client  *orgsdk.SDKClient
	idp     *identityProvider
	webhook *webhookReceiver
}

// setupOrgsContainer starts the organization service in a container wired to
// an in-process identity provider and webhook receiver.
func setupOrgsContainer(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	idp := newIdentityProvider(t)
	hook := newWebhookReceiver(t)
	idpPort := serverPort(t, idp.server)
	hookPort := serverPort(t, hook.server)

	req := testcontainers.ContainerRequest{
		Image:           testImageName,
		ExposedPorts:    []string{"8080/tcp"},
		HostAccessPorts: []int{idpPort, hookPort},
		Env: map[string]string{
			"ORGS_IDP_JWKS_URL":      fmt.Sprintf("http://%s:%d/jwks.json", testcontainers.HostInternal, idpPort),
			"ORGS_IDP_ISSUER":        idpIssuer,
			"ORGS_IDP_AUDIENCE":      idpAudience,
			"ORGS_EVENT_WEBHOOK_URL": fmt.Sprintf("http://%s:%d/events", testcontainers.HostInternal, hookPort),
			"ORGS_DISPATCH_INTERVAL": "1s",
			"ORGS_INVITE_BASE_URL":   inviteBaseURL,
			"ENV":                    "test",
			"LOG_LEVEL":              "info",
			"LOG_FORMAT":             "json",
			// Tests make many rapid requests from one address
			"RATELIMIT_INVITE_TOKEN_REQUESTS": "1000",
			"RATELIMIT_INVITE_TOKEN_BURST":    "1000",
			"RATELIMIT_MUTATION_REQUESTS":     "1000",
			"RATELIMIT_MUTATION_BURST":        "1000",
		},
		// readyz only passes once the JWKS has been loaded
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &env{
		client:  orgsdk.NewSDKClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port())),
		idp:     idp,
		webhook: hook,
	}
}

func serverPort(t *testing.T, s *httptest.Server) int {
	t.Helper()
	_, port, err := net.SplitHostPort(s.Listener.Addr().String())
	require.NoError(t, err)
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return n
}

// session returns an authenticated session for a test user.
func (e *env) session(t *testing.T, userID, email, name string) *orgsdk.Session {
	t.Helper()
	return e.client.NewSession(e.idp.token(t, userID, email, name))
}

// signup creates an organization owned by a fresh owner session.
func (e *env) signup(t *testing.T, plan string) (*orgsdk.Session, *orgsdk.CreateOrganizationResponse) {
	t.Helper()

	owner := e.session(t, "u-owner", "owner@e2e.test", "Olive Owner")
	created, err := owner.CreateOrganization(t.Context(), orgsdk.CreateOrganizationRequest{
		Name: "Harbour Electrical",
		Plan: plan,
	})
	require.NoError(t, err, "signup should succeed")
	require.Equal(t, "owner", created.Member.Role)

	return owner, created
}

// tokenFromURL extracts the invitation token from an accept link.
func tokenFromURL(t *testing.T, acceptURL string) string {
	t.Helper()
	token, ok := strings.CutPrefix(acceptURL, inviteBaseURL+"/")
	require.True(t, ok, "unexpected accept link %q", acceptURL)
	require.NotEmpty(t, token)
	return token
}

// assertCode checks err is an API error with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, orgsdk.IsCode(err, code), "expected %s, got: %v", code, err)
}
