package gogs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martenlienen/gogs-github-mirror/internal/credentials"
	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type recordingServer struct {
	mutex    sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
	server   *httptest.Server
}

func newRecordingServer(testInstance *testing.T, handler http.HandlerFunc) *recordingServer {
	testInstance.Helper()
	recorder := &recordingServer{handler: handler}
	recorder.server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		recorder.mutex.Lock()
		recorder.requests = append(recorder.requests, recordedRequest{
			Method: request.Method,
			Path:   request.URL.Path,
			Query:  request.URL.RawQuery,
			Header: request.Header.Clone(),
			Body:   body,
		})
		recorder.mutex.Unlock()
		recorder.handler(responseWriter, request)
	}))
	testInstance.Cleanup(recorder.server.Close)
	return recorder
}

func (recorder *recordingServer) recorded() []recordedRequest {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]recordedRequest(nil), recorder.requests...)
}

func newTestClient(testInstance *testing.T, baseURL string, attacher credentials.Attacher) *gogs.Client {
	testInstance.Helper()
	httpClient := credentials.NewHTTPClient(credentials.NewTransport(attacher, nil), nil)
	client, clientError := gogs.NewClient(zap.NewNop(), httpClient, gogs.Configuration{BaseURL: baseURL})
	require.NoError(testInstance, clientError)
	return client
}

func TestResolveOwnerQueriesExactlyOneEndpoint(testInstance *testing.T) {
	testCases := []struct {
		name         string
		organization string
		expectedPath string
		responseBody string
		expectedID   gogs.OwnerID
	}{
		{name: "organization", organization: "acme", expectedPath: "/api/v1/orgs/acme", responseBody: `{"id":42,"username":"acme"}`, expectedID: 42},
		{name: "authenticated_user", organization: "", expectedPath: "/api/v1/user", responseBody: `{"id":7,"login":"bob"}`, expectedID: 7},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorder := newRecordingServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
				if request.URL.Path != testCase.expectedPath {
					http.NotFound(responseWriter, request)
					return
				}
				_, _ = io.WriteString(responseWriter, testCase.responseBody)
			})
			client := newTestClient(testInstance, recorder.server.URL+"/", credentials.QueryToken{Token: "gogs-secret"})

			ownerID, resolveError := client.ResolveOwner(context.Background(), testCase.organization)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedID, ownerID)

			requests := recorder.recorded()
			require.Len(testInstance, requests, 1)
			require.Equal(testInstance, http.MethodGet, requests[0].Method)
			require.Equal(testInstance, testCase.expectedPath, requests[0].Path)
			require.Equal(testInstance, "token=gogs-secret", requests[0].Query)
		})
	}
}

func TestResolveOwnerReportsNonSuccessStatus(testInstance *testing.T) {
	recorder := newRecordingServer(testInstance, func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.WriteHeader(http.StatusNotFound)
	})
	client := newTestClient(testInstance, recorder.server.URL, nil)

	ownerID, resolveError := client.ResolveOwner(context.Background(), "missing-org")
	require.Zero(testInstance, ownerID)

	var resolutionError gogs.OwnerResolutionError
	require.True(testInstance, errors.As(resolveError, &resolutionError))
	require.Equal(testInstance, http.StatusNotFound, resolutionError.StatusCode)
	require.Equal(testInstance, recorder.server.URL+"/api/v1/orgs/missing-org", resolutionError.Endpoint)
	require.Len(testInstance, recorder.recorded(), 1)
}

func TestResolveOwnerReportsUndecodableBody(testInstance *testing.T) {
	recorder := newRecordingServer(testInstance, func(responseWriter http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(responseWriter, "<html>login</html>")
	})
	client := newTestClient(testInstance, recorder.server.URL, nil)

	_, resolveError := client.ResolveOwner(context.Background(), "")
	var requestError gogs.RequestError
	require.True(testInstance, errors.As(resolveError, &requestError))
	require.Equal(testInstance, http.MethodGet, requestError.Method)
}

func TestMigrateSendsMirrorRequest(testInstance *testing.T) {
	description := "a tool"
	testCases := []struct {
		name                string
		request             gogs.MirrorRequest
		responseStatus      int
		expectedDescription any
	}{
		{
			name: "with_description",
			request: gogs.MirrorRequest{
				CloneAddress:   "https://github.com/alice/tool.git",
				OwnerID:        7,
				RepositoryName: "tool",
				Mirror:         true,
				Private:        true,
				Description:    &description,
			},
			responseStatus:      http.StatusCreated,
			expectedDescription: "a tool",
		},
		{
			name: "null_description",
			request: gogs.MirrorRequest{
				CloneAddress:   "https://github.com/alice/notes.git",
				OwnerID:        7,
				RepositoryName: "notes",
				Mirror:         true,
			},
			responseStatus:      http.StatusInternalServerError,
			expectedDescription: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorder := newRecordingServer(testInstance, func(responseWriter http.ResponseWriter, _ *http.Request) {
				responseWriter.WriteHeader(testCase.responseStatus)
				_, _ = io.WriteString(responseWriter, `{"message":"ignored"}`)
			})
			client := newTestClient(testInstance, recorder.server.URL, credentials.HeaderToken{Scheme: credentials.DefaultTokenSchemeConstant, Token: "gogs-secret"})

			statusCode, migrateError := client.Migrate(context.Background(), testCase.request)
			require.NoError(testInstance, migrateError)
			require.Equal(testInstance, testCase.responseStatus, statusCode)

			requests := recorder.recorded()
			require.Len(testInstance, requests, 1)
			require.Equal(testInstance, http.MethodPost, requests[0].Method)
			require.Equal(testInstance, "/api/v1/repos/migrate", requests[0].Path)
			require.Equal(testInstance, "application/json", requests[0].Header.Get("Content-Type"))
			require.Equal(testInstance, "token gogs-secret", requests[0].Header.Get("Authorization"))

			var body map[string]any
			require.NoError(testInstance, json.Unmarshal(requests[0].Body, &body))
			require.Equal(testInstance, map[string]any{
				"clone_addr":  testCase.request.CloneAddress,
				"uid":         float64(7),
				"repo_name":   testCase.request.RepositoryName,
				"mirror":      true,
				"private":     testCase.request.Private,
				"description": testCase.expectedDescription,
			}, body)
		})
	}
}

func TestMigrateReportsTransportFailure(testInstance *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()
	client := newTestClient(testInstance, serverURL, nil)

	statusCode, migrateError := client.Migrate(context.Background(), gogs.MirrorRequest{RepositoryName: "tool"})
	require.Zero(testInstance, statusCode)

	var requestError gogs.RequestError
	require.True(testInstance, errors.As(migrateError, &requestError))
	require.Equal(testInstance, http.MethodPost, requestError.Method)
	require.Equal(testInstance, serverURL+"/api/v1/repos/migrate", requestError.Endpoint)
}

func TestNewClientValidatesConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		httpClient    *http.Client
		baseURL       string
		expectedError error
	}{
		{name: "missing_http_client", httpClient: nil, baseURL: "https://git.example.com", expectedError: gogs.ErrClientNotConfigured},
		{name: "missing_base_url", httpClient: &http.Client{}, baseURL: "  ", expectedError: gogs.ErrBaseURLMissing},
		{name: "relative_base_url", httpClient: &http.Client{}, baseURL: "git.example.com", expectedError: gogs.ErrBaseURLMissing},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, clientError := gogs.NewClient(zap.NewNop(), testCase.httpClient, gogs.Configuration{BaseURL: testCase.baseURL})
			require.Nil(testInstance, client)
			require.ErrorIs(testInstance, clientError, testCase.expectedError)
		})
	}
}

func TestOwnerEndpointEscapesOrganization(testInstance *testing.T) {
	client := newTestClient(testInstance, "https://git.example.com/", nil)
	require.Equal(testInstance, "https://git.example.com/api/v1/orgs/my%20org", client.OwnerEndpoint("my org"))
	require.Equal(testInstance, "https://git.example.com/api/v1/user", client.OwnerEndpoint(""))
}
