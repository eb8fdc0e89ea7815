package gogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	apiRootPathConstant              = "/api/v1"
	organizationPathTemplateConstant = "/orgs/%s"
	currentUserPathConstant          = "/user"
	migratePathConstant              = "/repos/migrate"
	contentTypeHeaderConstant        = "Content-Type"
	acceptHeaderConstant             = "Accept"
	jsonContentTypeConstant          = "application/json"
	logMessageOwnerResolvedConstant  = "Gogs owner resolved"
	logMessageMigrationSentConstant  = "Gogs migration request answered"
	logFieldEndpointConstant         = "endpoint"
	logFieldOwnerIDConstant          = "owner_id"
	logFieldRepositoryConstant       = "repository"
	logFieldStatusCodeConstant       = "status_code"
)

// OwnerID identifies the Gogs user or organization that owns created mirrors.
type OwnerID int64

// MirrorRequest is the body of a Gogs migration call.
type MirrorRequest struct {
	CloneAddress   string  `json:"clone_addr"`
	OwnerID        OwnerID `json:"uid"`
	RepositoryName string  `json:"repo_name"`
	Mirror         bool    `json:"mirror"`
	Private        bool    `json:"private"`
	Description    *string `json:"description"`
}

// Configuration describes the Gogs instance.
type Configuration struct {
	BaseURL string
}

// Client issues Gogs API requests through an HTTP client that attaches the target credentials.
type Client struct {
	apiRoot    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ownerPayload struct {
	ID int64 `json:"id"`
}

// NewClient validates the configuration and constructs a Client.
func NewClient(logger *zap.Logger, httpClient *http.Client, configuration Configuration) (*Client, error) {
	if httpClient == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	if len(trimmedBaseURL) == 0 {
		return nil, ErrBaseURLMissing
	}
	parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, configuration.BaseURL, parseError)
	}
	if len(parsedBaseURL.Scheme) == 0 || len(parsedBaseURL.Host) == 0 {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, configuration.BaseURL, ErrBaseURLMissing)
	}

	return &Client{apiRoot: trimmedBaseURL + apiRootPathConstant, httpClient: httpClient, logger: logger}, nil
}

// OwnerEndpoint returns the lookup endpoint for the organization, or for the
// authenticated user when organization is empty.
func (client *Client) OwnerEndpoint(organization string) string {
	if len(organization) > 0 {
		return client.apiRoot + fmt.Sprintf(organizationPathTemplateConstant, url.PathEscape(organization))
	}
	return client.apiRoot + currentUserPathConstant
}

// ResolveOwner performs exactly one lookup and returns the owner id.
func (client *Client) ResolveOwner(executionContext context.Context, organization string) (OwnerID, error) {
	endpoint := client.OwnerEndpoint(organization)

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, endpoint, nil)
	if requestError != nil {
		return 0, RequestError{Method: http.MethodGet, Endpoint: endpoint, Cause: requestError}
	}
	request.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return 0, RequestError{Method: http.MethodGet, Endpoint: endpoint, Cause: responseError}
	}
	defer drainAndClose(response.Body)

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return 0, OwnerResolutionError{Endpoint: endpoint, StatusCode: response.StatusCode}
	}

	var owner ownerPayload
	if decodeError := json.NewDecoder(response.Body).Decode(&owner); decodeError != nil {
		return 0, RequestError{Method: http.MethodGet, Endpoint: endpoint, Cause: fmt.Errorf(decodeOwnerErrorTemplateConstant, endpoint, decodeError)}
	}

	client.logger.Debug(logMessageOwnerResolvedConstant, zap.String(logFieldEndpointConstant, endpoint), zap.Int64(logFieldOwnerIDConstant, owner.ID))
	return OwnerID(owner.ID), nil
}

// Migrate submits one migration request and returns the response status code.
// The response body is discarded.
func (client *Client) Migrate(executionContext context.Context, mirrorRequest MirrorRequest) (int, error) {
	endpoint := client.apiRoot + migratePathConstant

	body, encodeError := json.Marshal(mirrorRequest)
	if encodeError != nil {
		return 0, fmt.Errorf(encodeRequestErrorTemplateConstant, mirrorRequest.RepositoryName, encodeError)
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, endpoint, bytes.NewReader(body))
	if requestError != nil {
		return 0, RequestError{Method: http.MethodPost, Endpoint: endpoint, Cause: requestError}
	}
	request.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	request.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return 0, RequestError{Method: http.MethodPost, Endpoint: endpoint, Cause: responseError}
	}
	drainAndClose(response.Body)

	client.logger.Debug(
		logMessageMigrationSentConstant,
		zap.String(logFieldRepositoryConstant, mirrorRequest.RepositoryName),
		zap.Int(logFieldStatusCodeConstant, response.StatusCode),
	)
	return response.StatusCode, nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
