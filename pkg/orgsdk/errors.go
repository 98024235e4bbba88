package orgsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes returned by the organization service.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeValidation              = "validation_error"
	ErrorCodeUnauthenticated         = "unauthenticated"
	ErrorCodeNoOrganization          = "no_organization"
	ErrorCodeNotAMember              = "not_a_member"
	ErrorCodeMemberNotActive         = "member_not_active"
	ErrorCodeInsufficientPermissions = "insufficient_permissions"
	ErrorCodeCannotModifyOwner       = "cannot_modify_owner"
	ErrorCodeSelfActionForbidden     = "self_action_forbidden"
	ErrorCodeEmailMismatch           = "email_mismatch"
	ErrorCodeInvitationInvalid       = "invitation_invalid"
	ErrorCodeInvitationNotFound      = "invitation_not_found"
	ErrorCodeMemberNotFound          = "member_not_found"
	ErrorCodeInvitationExpired       = "invitation_expired"
	ErrorCodeSeatsExhausted          = "seats_exhausted"
	ErrorCodeEmailAlreadyMember      = "email_already_member"
	ErrorCodeInvitationPending       = "invitation_pending"
	ErrorCodeAlreadyInOrganization   = "already_in_organization"
	ErrorCodeConflict                = "conflict"
	ErrorCodeRateLimitExceeded       = "rate_limit_exceeded"
	ErrorCodeOrganizationNotFound    = "organization_not_found"
	ErrorCodeServerError             = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	ErrorResponse

	// RetryAfter is set from the Retry-After header on 409 conflict and 429.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.ErrorDescription == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.ErrorResponse.Error)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.ErrorResponse.Error, e.ErrorDescription)
}

// Retryable reports whether the same request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.ErrorResponse.Error == ErrorCodeConflict || e.StatusCode == http.StatusTooManyRequests
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorResponse.Error == code
}

// parseErrorResponse builds an *APIError from a non-2xx response.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	if err := json.Unmarshal(body, &apiErr.ErrorResponse); err != nil || apiErr.ErrorResponse.Error == "" {
		apiErr.ErrorResponse = ErrorResponse{
			Error:            ErrorCodeServerError,
			ErrorDescription: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	return apiErr
}
