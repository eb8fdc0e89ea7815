// Package source lists the repositories an account can see on the GitHub API.
//
// Lister follows the RFC 8288 Link header of every page until no "next"
// relation remains, accumulating repository descriptors in the order the API
// returns them. ParseLinkHeader is the pure parser behind the pagination.
package source
