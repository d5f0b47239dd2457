/*-------------------------------------------------------------------------
 *
 * errors.go
 *    Typed errors for the approval workflow
 *
 * Business-rule violations are surfaced verbatim to the actor and are
 * never retried; ErrStorageUnavailable marks infrastructure failures a
 * caller may retry with backoff.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/workflow/errors.go
 *
 *-------------------------------------------------------------------------
 */

package workflow

import "errors"

var (
	/* ErrUnauthorized is returned on a role or ownership mismatch */
	ErrUnauthorized = errors.New("actor is not authorized for this operation")

	/* ErrIllegalTransition is returned when the proposed status is not a
	 * legal proposal target */
	ErrIllegalTransition = errors.New("illegal status transition")

	/* ErrProposalAlreadyPending is returned when a proposal is already
	 * awaiting admin review */
	ErrProposalAlreadyPending = errors.New("a proposal is already pending admin approval")

	/* ErrNoPendingProposal is returned when resolving an application that
	 * has no outstanding proposal */
	ErrNoPendingProposal = errors.New("no proposal is pending admin approval")

	/* ErrMissingReason is returned when rejecting without a reason */
	ErrMissingReason = errors.New("a rejection reason is required")

	/* ErrEmptyRemark is returned when a remark trims to empty text */
	ErrEmptyRemark = errors.New("remark text cannot be empty")

	/* ErrApplicationNotFound is returned when the application does not exist */
	ErrApplicationNotFound = errors.New("application not found")

	/* ErrStorageUnavailable is returned on storage-layer failure */
	ErrStorageUnavailable = errors.New("storage unavailable")
)
