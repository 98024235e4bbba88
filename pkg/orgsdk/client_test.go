package orgsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
	"github.com/stretchr/testify/require"
)

func TestSessionSendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "/v1/invitations", r.URL.Path)

		var req orgsdk.InviteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice@example.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(orgsdk.InvitationResponse{ID: "inv-1", Email: req.Email, Role: req.Role, Status: "pending"})
	}))
	t.Cleanup(srv.Close)

	s := orgsdk.NewSDKClient(srv.URL + "/").NewSession("tok-123")
	inv, err := s.Invite(context.Background(), orgsdk.InviteRequest{Email: "alice@example.com", Role: "member"})
	require.NoError(t, err)
	require.Equal(t, "inv-1", inv.ID)
	require.Equal(t, "pending", inv.Status)
}

func TestAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/members/m-1":
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(orgsdk.ErrorResponse{Error: "conflict", ErrorDescription: "retry"})
		case "/v1/invitations":
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(orgsdk.ErrorResponse{
				Error:         "insufficient_permissions",
				RequiredRoles: []string{"owner", "admin"},
				ActualRole:    "member",
			})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	s := orgsdk.NewSDKClient(srv.URL).NewSession("tok")

	err := s.RemoveMember(ctx, "m-1")
	var apiErr *orgsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.True(t, apiErr.Retryable())
	require.Equal(t, time.Second, apiErr.RetryAfter)

	_, err = s.Invite(ctx, orgsdk.InviteRequest{Email: "a@example.com", Role: "member"})
	require.True(t, orgsdk.IsCode(err, orgsdk.ErrorCodeInsufficientPermissions))
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, []string{"owner", "admin"}, apiErr.RequiredRoles)
	require.Equal(t, "member", apiErr.ActualRole)
	require.False(t, apiErr.Retryable())

	_, err = s.ListMembers(ctx)
	require.True(t, orgsdk.IsCode(err, orgsdk.ErrorCodeServerError))
}

func TestEmptyTokenFailsLocally(t *testing.T) {
	s := orgsdk.NewSDKClient("http://127.0.0.1:0").NewSession("")
	_, err := s.GetOrganization(context.Background())
	require.Error(t, err)
	var apiErr *orgsdk.APIError
	require.NotErrorAs(t, err, &apiErr)
}
