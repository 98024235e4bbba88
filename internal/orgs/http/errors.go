package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/orgs/domain"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/orgsdk"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable maps domain errors to responses. Order matters only for
// errors that wrap more than one sentinel.
var errorTable = []errorMapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, orgsdk.ErrorCodeUnauthenticated},

	{domain.ErrNoOrganization, http.StatusForbidden, orgsdk.ErrorCodeNoOrganization},
	{domain.ErrNotAMember, http.StatusForbidden, orgsdk.ErrorCodeNotAMember},
	{domain.ErrMemberNotActive, http.StatusForbidden, orgsdk.ErrorCodeMemberNotActive},
	{domain.ErrCannotModifyOwner, http.StatusForbidden, orgsdk.ErrorCodeCannotModifyOwner},
	{domain.ErrSelfActionForbidden, http.StatusForbidden, orgsdk.ErrorCodeSelfActionForbidden},
	{domain.ErrEmailMismatch, http.StatusForbidden, orgsdk.ErrorCodeEmailMismatch},

	{domain.ErrInvitationInvalid, http.StatusNotFound, orgsdk.ErrorCodeInvitationInvalid},
	{domain.ErrInvitationNotFound, http.StatusNotFound, orgsdk.ErrorCodeInvitationNotFound},
	{domain.ErrMemberNotFound, http.StatusNotFound, orgsdk.ErrorCodeMemberNotFound},
	{domain.ErrInvitationExpired, http.StatusGone, orgsdk.ErrorCodeInvitationExpired},

	{domain.ErrSeatsExhausted, http.StatusConflict, orgsdk.ErrorCodeSeatsExhausted},
	{domain.ErrEmailAlreadyMember, http.StatusConflict, orgsdk.ErrorCodeEmailAlreadyMember},
	{domain.ErrInvitationPending, http.StatusConflict, orgsdk.ErrorCodeInvitationPending},
	{domain.ErrAlreadyInOrganization, http.StatusConflict, orgsdk.ErrorCodeAlreadyInOrganization},
	{domain.ErrConflict, http.StatusConflict, orgsdk.ErrorCodeConflict},

	{domain.ErrInvalidRole, http.StatusBadRequest, orgsdk.ErrorCodeInvalidRequest},
	{domain.ErrInvalidPlan, http.StatusBadRequest, orgsdk.ErrorCodeInvalidRequest},

	{domain.ErrOrganizationNotFound, http.StatusInternalServerError, orgsdk.ErrorCodeOrganizationNotFound},
}

// writeError renders err with the status and code its kind maps to.
// Anything unmapped is logged and reported as server_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var perm *domain.InsufficientPermissionsError
	if errors.As(err, &perm) {
		httpx.WriteJSON(w, http.StatusForbidden, httpx.ErrorResponse{
			Error:            orgsdk.ErrorCodeInsufficientPermissions,
			ErrorDescription: domain.ErrInsufficientPermissions.Error(),
			RequiredRoles:    domain.RoleStrings(perm.Required),
			ActualRole:       string(perm.Actual),
		})
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            orgsdk.ErrorCodeValidation,
			ErrorDescription: "request validation failed",
			Details:          verr.Fields,
		})
		return
	}

	for _, m := range errorTable {
		if !errors.Is(err, m.err) {
			continue
		}
		switch m.err {
		case domain.ErrUnauthenticated:
			httpx.SetBearerChallenge(w, "the access token is missing, invalid or expired")
		case domain.ErrConflict:
			w.Header().Set("Retry-After", "1")
		}
		httpx.WriteError(w, m.status, m.code, m.err.Error())
		return
	}

	slogx.FromContext(r.Context()).Error("unhandled error",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.WriteError(w, http.StatusInternalServerError, orgsdk.ErrorCodeServerError, "internal server error")
}

// writeBadRequest reports an unreadable request body.
func writeBadRequest(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, orgsdk.ErrorCodeInvalidRequest, err.Error())
}
