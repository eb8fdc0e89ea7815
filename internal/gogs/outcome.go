package gogs

import "net/http"

// OutcomeKind names the result of one migration request.
type OutcomeKind string

// Known outcome kinds.
const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeAlreadyExists OutcomeKind = "already_exists"
	OutcomeUnknown       OutcomeKind = "unknown"
)

// MirrorOutcome is the classified result of one migration request.
type MirrorOutcome struct {
	Kind       OutcomeKind
	StatusCode int
}

// OutcomeKinds lists every kind in reporting order.
func OutcomeKinds() []OutcomeKind {
	return []OutcomeKind{OutcomeCreated, OutcomeAlreadyExists, OutcomeUnknown}
}

// ClassifyStatus maps a migration response status onto an outcome.
//
// Gogs answers 500 when the repository name is already taken under the owner,
// but also for genuine server faults; the two cannot be told apart from the
// status alone, so 500 is reported as AlreadyExists.
func ClassifyStatus(statusCode int) MirrorOutcome {
	switch statusCode {
	case http.StatusCreated:
		return MirrorOutcome{Kind: OutcomeCreated, StatusCode: statusCode}
	case http.StatusInternalServerError:
		return MirrorOutcome{Kind: OutcomeAlreadyExists, StatusCode: statusCode}
	default:
		return MirrorOutcome{Kind: OutcomeUnknown, StatusCode: statusCode}
	}
}
