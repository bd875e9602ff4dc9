package agendahub

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoCallback means the inspected URL carries no authentication
	// callback. A normal page visit, not a failure.
	ErrNoCallback = errors.New("no authentication callback present")

	// ErrStateMismatch means the echoed OAuth state does not match the one
	// issued for the pending flow. Hard authentication failure.
	ErrStateMismatch = errors.New("oauth state mismatch")

	ErrSyncInProgress = errors.New("synchronization already in progress")
	ErrAgendaNotFound = errors.New("agenda not found")
	ErrNotOAuthSource = errors.New("agenda source does not use authentication")
)

// ProviderError is a failed fetch against a cloud provider. Message holds
// the provider's own error message when the response carried one,
// otherwise the HTTP status text.
type ProviderError struct {
	Source     Source
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Source, msg)
}

// AuthFlowError is a provider redirect that carried an error instead of a
// token.
type AuthFlowError struct {
	Code        string
	Description string
}

func (e *AuthFlowError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("oauth error: %s", e.Code)
	}
	return fmt.Sprintf("oauth error: %s - %s", e.Code, e.Description)
}
