package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
	"github.com/martenlienen/gogs-github-mirror/internal/repository"
	"github.com/martenlienen/gogs-github-mirror/internal/source"
)

const (
	sourceUserFieldNameConstant            = "gh-user"
	targetUserFieldNameConstant            = "gogs-user"
	targetURLFieldNameConstant             = "gogs-url"
	requiredValueMessageConstant           = "value is required"
	listerMissingMessageConstant           = "repository lister not configured"
	ownerResolverMissingMessageConstant    = "owner resolver not configured"
	registrarMissingMessageConstant        = "mirror registrar not configured"
	listingErrorTemplateConstant           = "unable to list source repositories: %w"
	ownerResolutionErrorTemplateConstant   = "unable to resolve gogs owner: %w"
	registrationErrorTemplateConstant      = "mirror run aborted: %w"
	ownerKindOrganizationConstant          = "organization"
	ownerKindUserConstant                  = "user"
	logMessageRepositoriesSelectedConstant = "Source repositories selected"
	logMessageOwnerResolvedConstant        = "Mirror owner resolved"
	logMessageRunCompletedConstant         = "Mirror run completed"
	logFieldSourceUserConstant             = "source_user"
	logFieldListedCountConstant            = "listed"
	logFieldSelectedCountConstant          = "selected"
	logFieldRepositoriesConstant           = "repositories"
	logFieldPagesFetchedConstant           = "pages_fetched"
	logFieldIncludeForksConstant           = "include_forks"
	logFieldOwnerKindConstant              = "owner_kind"
	logFieldOwnerNameConstant              = "owner_name"
	logFieldOwnerIDConstant                = "owner_id"
	logFieldDryRunConstant                 = "dry_run"
	logFieldOutcomeCountsConstant          = "outcomes"
)

var (
	errListerMissing        = errors.New(listerMissingMessageConstant)
	errOwnerResolverMissing = errors.New(ownerResolverMissingMessageConstant)
	errRegistrarMissing     = errors.New(registrarMissingMessageConstant)
)

// InvalidInputError describes option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// RepositoryLister lists every repository visible to the source account.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context) (source.ListResult, error)
}

// OwnerResolver resolves the Gogs account receiving the mirrors.
type OwnerResolver interface {
	ResolveOwner(executionContext context.Context, organization string) (gogs.OwnerID, error)
}

// RepositoryRegistrar submits migration requests.
type RepositoryRegistrar interface {
	Register(executionContext context.Context, owner gogs.OwnerID, descriptors []repository.Descriptor, observer gogs.Observer) ([]gogs.Registration, error)
}

// SelectionOptions configures repository filtering.
type SelectionOptions struct {
	SourceUser   string
	IncludeForks bool
}

// Selection holds the filtered repositories together with listing statistics.
type Selection struct {
	PagesFetched int
	Listed       int
	Repositories []repository.Descriptor
}

// Options configures one mirror run.
type Options struct {
	SourceUser   string
	TargetUser   string
	Organization string
	IncludeForks bool
	DryRun       bool
}

// Owner identifies the resolved Gogs account.
type Owner struct {
	Kind string
	Name string
	ID   gogs.OwnerID
}

// Result captures the observable outcome of a run.
type Result struct {
	Selection     Selection
	Owner         Owner
	Registrations []gogs.Registration
	DryRun        bool
	StartedAt     time.Time
	FinishedAt    time.Time
}

// OutcomeCounts tallies registrations by outcome kind.
func (result Result) OutcomeCounts() map[gogs.OutcomeKind]int {
	counts := make(map[gogs.OutcomeKind]int, len(gogs.OutcomeKinds()))
	for _, kind := range gogs.OutcomeKinds() {
		counts[kind] = 0
	}
	for _, registration := range result.Registrations {
		counts[registration.Outcome.Kind]++
	}
	return counts
}

// ServiceDependencies describes required collaborators for a run.
type ServiceDependencies struct {
	Logger        *zap.Logger
	Lister        RepositoryLister
	OwnerResolver OwnerResolver
	Registrar     RepositoryRegistrar
	Output        io.Writer
	Metrics       *Metrics
	Clock         func() time.Time
}

// Service orchestrates listing, filtering, owner resolution and registration.
type Service struct {
	logger        *zap.Logger
	lister        RepositoryLister
	ownerResolver OwnerResolver
	registrar     RepositoryRegistrar
	printer       StatusPrinter
	metrics       *Metrics
	clock         func() time.Time
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Lister == nil {
		return nil, errListerMissing
	}
	if dependencies.OwnerResolver == nil {
		return nil, errOwnerResolverMissing
	}
	if dependencies.Registrar == nil {
		return nil, errRegistrarMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		logger:        logger,
		lister:        dependencies.Lister,
		ownerResolver: dependencies.OwnerResolver,
		registrar:     dependencies.Registrar,
		printer:       NewStatusPrinter(dependencies.Output),
		metrics:       dependencies.Metrics,
		clock:         clock,
	}, nil
}

// SelectRepositories lists the source repositories and applies the ownership and fork filters.
// Filtering starts only after the listing has completed.
func SelectRepositories(executionContext context.Context, lister RepositoryLister, options SelectionOptions) (Selection, error) {
	if lister == nil {
		return Selection{}, errListerMissing
	}
	if len(strings.TrimSpace(options.SourceUser)) == 0 {
		return Selection{}, InvalidInputError{FieldName: sourceUserFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listResult, listError := lister.ListRepositories(executionContext)
	if listError != nil {
		return Selection{}, fmt.Errorf(listingErrorTemplateConstant, listError)
	}

	owned := repository.FilterOwnedBy(listResult.Repositories, options.SourceUser)
	selected := repository.FilterForks(owned, options.IncludeForks)

	return Selection{
		PagesFetched: listResult.PagesFetched,
		Listed:       len(listResult.Repositories),
		Repositories: selected,
	}, nil
}

// Execute performs one mirror run. Listing and owner resolution failures abort
// the run before any migration request is sent. A migration request that fails
// outright aborts the remaining submissions; classified outcomes never do.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	if validationError := validateOptions(options); validationError != nil {
		return Result{}, validationError
	}

	result := Result{DryRun: options.DryRun, StartedAt: service.clock()}

	selection, selectionError := SelectRepositories(executionContext, service.lister, SelectionOptions{
		SourceUser:   options.SourceUser,
		IncludeForks: options.IncludeForks,
	})
	if selectionError != nil {
		return Result{}, selectionError
	}
	result.Selection = selection
	service.metrics.ObserveListing(selection.PagesFetched, selection.Listed, len(selection.Repositories))

	service.logger.Info(
		logMessageRepositoriesSelectedConstant,
		zap.String(logFieldSourceUserConstant, options.SourceUser),
		zap.Int(logFieldPagesFetchedConstant, selection.PagesFetched),
		zap.Int(logFieldListedCountConstant, selection.Listed),
		zap.Int(logFieldSelectedCountConstant, len(selection.Repositories)),
		zap.Bool(logFieldIncludeForksConstant, options.IncludeForks),
		zap.Strings(logFieldRepositoriesConstant, repository.Names(selection.Repositories)),
	)

	service.printer.Announce(options.Organization, options.TargetUser)

	ownerID, ownerError := service.ownerResolver.ResolveOwner(executionContext, options.Organization)
	if ownerError != nil {
		return Result{}, fmt.Errorf(ownerResolutionErrorTemplateConstant, ownerError)
	}
	result.Owner = describeOwner(options, ownerID)

	service.logger.Info(
		logMessageOwnerResolvedConstant,
		zap.String(logFieldOwnerKindConstant, result.Owner.Kind),
		zap.String(logFieldOwnerNameConstant, result.Owner.Name),
		zap.Int64(logFieldOwnerIDConstant, int64(ownerID)),
	)

	if options.DryRun {
		for _, descriptor := range selection.Repositories {
			service.printer.Planned(descriptor)
		}
		result.Registrations = []gogs.Registration{}
	} else {
		registrations, registrationError := service.registrar.Register(executionContext, ownerID, selection.Repositories, func(registration gogs.Registration) {
			service.printer.Registration(registration)
			service.metrics.ObserveOutcome(registration.Outcome.Kind)
		})
		result.Registrations = registrations
		if registrationError != nil {
			return result, fmt.Errorf(registrationErrorTemplateConstant, registrationError)
		}
	}

	result.FinishedAt = service.clock()
	service.metrics.ObserveRun(result.StartedAt, result.FinishedAt)

	service.logger.Info(
		logMessageRunCompletedConstant,
		zap.Bool(logFieldDryRunConstant, options.DryRun),
		zap.Any(logFieldOutcomeCountsConstant, result.OutcomeCounts()),
	)

	return result, nil
}

func validateOptions(options Options) error {
	if len(strings.TrimSpace(options.SourceUser)) == 0 {
		return InvalidInputError{FieldName: sourceUserFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.TargetUser)) == 0 {
		return InvalidInputError{FieldName: targetUserFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func describeOwner(options Options, ownerID gogs.OwnerID) Owner {
	if len(options.Organization) > 0 {
		return Owner{Kind: ownerKindOrganizationConstant, Name: options.Organization, ID: ownerID}
	}
	return Owner{Kind: ownerKindUserConstant, Name: options.TargetUser, ID: ownerID}
}
