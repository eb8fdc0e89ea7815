package gogs

import (
	"errors"
	"fmt"
)

const (
	ownerResolutionErrorTemplateConstant = "owner lookup at %s returned status %d"
	requestErrorTemplateConstant         = "%s %s failed: %v"
	clientNotConfiguredMessageConstant   = "gogs HTTP client not configured"
	baseURLMissingMessageConstant        = "gogs base URL not configured"
	invalidBaseURLErrorTemplateConstant  = "invalid gogs URL %q: %w"
	encodeRequestErrorTemplateConstant   = "unable to encode migration request for %s: %w"
	decodeOwnerErrorTemplateConstant     = "unable to decode owner from %s: %w"
	registrationErrorTemplateConstant    = "mirror request for %s failed: %v"
)

var (
	// ErrClientNotConfigured indicates the client was constructed without an HTTP client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrBaseURLMissing indicates the Gogs instance URL is empty.
	ErrBaseURLMissing = errors.New(baseURLMissingMessageConstant)
)

// OwnerResolutionError reports a non-2xx answer from the owner lookup endpoint.
type OwnerResolutionError struct {
	Endpoint   string
	StatusCode int
}

// Error describes the failed lookup.
func (resolutionError OwnerResolutionError) Error() string {
	return fmt.Sprintf(ownerResolutionErrorTemplateConstant, resolutionError.Endpoint, resolutionError.StatusCode)
}

// RequestError reports a request that produced no usable response.
type RequestError struct {
	Method   string
	Endpoint string
	Cause    error
}

// Error describes the failed request.
func (requestError RequestError) Error() string {
	return fmt.Sprintf(requestErrorTemplateConstant, requestError.Method, requestError.Endpoint, requestError.Cause)
}

// Unwrap exposes the underlying transport or decoding error.
func (requestError RequestError) Unwrap() error {
	return requestError.Cause
}

// RegistrationError reports a migration request that failed outright and ended the run.
type RegistrationError struct {
	RepositoryName string
	Cause          error
}

func (registrationError RegistrationError) Error() string {
	return fmt.Sprintf(registrationErrorTemplateConstant, registrationError.RepositoryName, registrationError.Cause)
}

// Unwrap exposes the request failure.
func (registrationError RegistrationError) Unwrap() error {
	return registrationError.Cause
}
