package credentials

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	// DefaultTokenQueryParameterConstant is the query parameter Gogs reads API tokens from.
	DefaultTokenQueryParameterConstant = "token"
	// DefaultAuthorizationHeaderConstant is the header carrying header-placed tokens.
	DefaultAuthorizationHeaderConstant = "Authorization"
	// DefaultTokenSchemeConstant prefixes header-placed Gogs tokens.
	DefaultTokenSchemeConstant  = "token"
	headerValueTemplateConstant = "%s %s"
)

// Attacher decorates a request with credentials.
type Attacher interface {
	Attach(request *http.Request)
}

// BasicAuth attaches HTTP basic authentication.
type BasicAuth struct {
	Username string
	Password string
}

// Attach sets the basic authentication header.
func (basicAuth BasicAuth) Attach(request *http.Request) {
	request.SetBasicAuth(basicAuth.Username, basicAuth.Password)
}

// QueryToken attaches a token as a URL query parameter.
type QueryToken struct {
	Parameter string
	Token     string
}

// Attach adds the token parameter, replacing any existing value.
func (queryToken QueryToken) Attach(request *http.Request) {
	parameter := queryToken.Parameter
	if len(parameter) == 0 {
		parameter = DefaultTokenQueryParameterConstant
	}
	query := request.URL.Query()
	query.Set(parameter, queryToken.Token)
	request.URL.RawQuery = query.Encode()
}

// HeaderToken attaches a token as a request header, optionally prefixed with a scheme.
type HeaderToken struct {
	Header string
	Scheme string
	Token  string
}

// Attach sets the configured header.
func (headerToken HeaderToken) Attach(request *http.Request) {
	header := headerToken.Header
	if len(header) == 0 {
		header = DefaultAuthorizationHeaderConstant
	}
	value := headerToken.Token
	if len(headerToken.Scheme) > 0 {
		value = fmt.Sprintf(headerValueTemplateConstant, headerToken.Scheme, headerToken.Token)
	}
	request.Header.Set(header, value)
}

type attachingTransport struct {
	attacher Attacher
	base     http.RoundTripper
}

// NewTransport wraps base so every request carries the attacher's credentials.
// A nil base falls back to http.DefaultTransport.
func NewTransport(attacher Attacher, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if attacher == nil {
		return base
	}
	return &attachingTransport{attacher: attacher, base: base}
}

// RoundTrip clones the request before attaching credentials, as required by http.RoundTripper.
func (transport *attachingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	clonedRequest := request.Clone(request.Context())
	transport.attacher.Attach(clonedRequest)
	return transport.base.RoundTrip(clonedRequest)
}

// NewBearerTransport wraps base with an OAuth2 static bearer token.
func NewBearerTransport(token string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		Base:   base,
	}
}

// NewHTTPClient builds an http.Client around the transport, reusing the template's timeout when provided.
func NewHTTPClient(transport http.RoundTripper, template *http.Client) *http.Client {
	client := &http.Client{Transport: transport}
	if template != nil {
		client.Timeout = template.Timeout
		client.CheckRedirect = template.CheckRedirect
		client.Jar = template.Jar
	}
	return client
}
