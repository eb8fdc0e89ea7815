package source

import (
	"errors"
	"fmt"
)

const (
	listingErrorTemplateConstant         = "listing repositories at %s failed: %v"
	clientNotConfiguredMessageConstant   = "github client not configured"
	invalidBaseURLErrorTemplateConstant  = "invalid source API URL %q: %w"
	requestCreationErrorTemplateConstant = "unable to build request for %s: %w"
)

// ErrClientNotConfigured indicates the lister was constructed without an HTTP client.
var ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// ListingError reports a page request that failed outright or returned a non-2xx status.
type ListingError struct {
	PageURL string
	Cause   error
}

// Error describes the failing page.
func (listingError ListingError) Error() string {
	return fmt.Sprintf(listingErrorTemplateConstant, listingError.PageURL, listingError.Cause)
}

// Unwrap exposes the transport or API error, such as *github.ErrorResponse.
func (listingError ListingError) Unwrap() error {
	return listingError.Cause
}
