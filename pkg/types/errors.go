package types

import "errors"

var (
	ErrCaptureUnavailable  = errors.New("capture device unavailable")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrDraftIncomplete     = errors.New("report draft is incomplete")
	ErrSubmissionInFlight  = errors.New("report submission already in progress")
	ErrDraftSubmitted      = errors.New("report draft was already submitted")
	ErrSubmissionFailed    = errors.New("report submission failed")
	ErrFetchFailed         = errors.New("failed to fetch reports")
	ErrUnauthorized        = errors.New("reviewer session required")
	ErrInvalidTransition   = errors.New("invalid report status transition")
	ErrDecisionFailed      = errors.New("report decision failed")

	ErrReportNotFound      = errors.New("report not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrRegistrationInvalid = errors.New("registration is invalid")
)
