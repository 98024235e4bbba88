/*
Package orgsdk provides a client SDK for the organization service.

# Overview

The service manages organizations, their members and the invitations that
bring new members in. Identity is owned by an external identity provider:
every authenticated call carries that provider's access token.

	client := orgsdk.NewSDKClient("https://orgs.example.com")

	// Public: what does this invitation link point at?
	details, err := client.LookupInvitation(ctx, token)

	// Authenticated calls go through a Session.
	session := client.NewSession(accessToken)
	accepted, err := session.AcceptInvitation(ctx, token)

# Errors

Every non-2xx response is returned as an *APIError carrying the service's
error code. Use IsCode to branch on a specific condition:

	_, err := session.Invite(ctx, orgsdk.InviteRequest{Email: "a@example.com", Role: "member"})
	if orgsdk.IsCode(err, orgsdk.ErrorCodeSeatsExhausted) {
		// upgrade the plan
	}

A conflict response means a concurrent change won a race; the request can
be retried unchanged. APIError.Retryable reports this.
*/
package orgsdk
