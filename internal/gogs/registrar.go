package gogs

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/martenlienen/gogs-github-mirror/internal/repository"
)

const (
	migrationClientMissingMessageConstant = "gogs migration client not configured"
	logMessageMigrationFailedConstant     = "Gogs migration request failed"
	logMessageOutcomeClassifiedConstant   = "Gogs migration outcome classified"
	logFieldOutcomeConstant               = "outcome"
)

// ErrMigrationClientMissing indicates the registrar was built without a client.
var ErrMigrationClientMissing = errors.New(migrationClientMissingMessageConstant)

// MigrationClient submits migration requests.
type MigrationClient interface {
	Migrate(executionContext context.Context, mirrorRequest MirrorRequest) (int, error)
}

// Registration pairs a repository with the outcome of its migration request.
type Registration struct {
	Repository repository.Descriptor
	Outcome    MirrorOutcome
}

// Observer receives each registration as soon as its request completes.
type Observer func(registration Registration)

// Registrar submits one migration request per repository.
type Registrar struct {
	client MigrationClient
	logger *zap.Logger
}

// NewRegistrar constructs a Registrar.
func NewRegistrar(logger *zap.Logger, client MigrationClient) (*Registrar, error) {
	if client == nil {
		return nil, ErrMigrationClientMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{client: client, logger: logger}, nil
}

// NewMirrorRequest derives the migration body for a repository under owner.
func NewMirrorRequest(descriptor repository.Descriptor, owner OwnerID) MirrorRequest {
	return MirrorRequest{
		CloneAddress:   descriptor.CloneURL,
		OwnerID:        owner,
		RepositoryName: descriptor.Name,
		Mirror:         true,
		Private:        descriptor.Private,
		Description:    descriptor.Description,
	}
}

// Register submits the repositories in order, one request each, and never
// retries. A request that fails outright stops the loop; the registrations
// completed before it are returned alongside a RegistrationError.
func (registrar *Registrar) Register(executionContext context.Context, owner OwnerID, descriptors []repository.Descriptor, observer Observer) ([]Registration, error) {
	registrations := make([]Registration, 0, len(descriptors))
	for _, descriptor := range descriptors {
		statusCode, migrateError := registrar.client.Migrate(executionContext, NewMirrorRequest(descriptor, owner))
		if migrateError != nil {
			registrar.logger.Error(
				logMessageMigrationFailedConstant,
				zap.String(logFieldRepositoryConstant, descriptor.Name),
				zap.Error(migrateError),
			)
			return registrations, RegistrationError{RepositoryName: descriptor.Name, Cause: migrateError}
		}

		outcome := ClassifyStatus(statusCode)
		registrar.logger.Debug(
			logMessageOutcomeClassifiedConstant,
			zap.String(logFieldRepositoryConstant, descriptor.Name),
			zap.String(logFieldOutcomeConstant, string(outcome.Kind)),
		)

		registration := Registration{Repository: descriptor, Outcome: outcome}
		registrations = append(registrations, registration)
		if observer != nil {
			observer(registration)
		}
	}
	return registrations, nil
}
