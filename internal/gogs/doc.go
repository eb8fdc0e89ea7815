// Package gogs talks to the Gogs API v1: it resolves the account that receives
// mirrors and submits one migration request per repository.
package gogs
