// Package credentials attaches API credentials to outgoing HTTP requests.
//
// The source and target hosting APIs place credentials differently (HTTP
// basic auth versus a token query parameter), so each API is configured with
// an Attacher wrapped into an http.RoundTripper. The package also resolves
// tokens from environment variables or files and prompts for missing secrets.
package credentials
