package mirror

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/martenlienen/gogs-github-mirror/internal/credentials"
	"github.com/martenlienen/gogs-github-mirror/internal/gogs"
	"github.com/martenlienen/gogs-github-mirror/internal/source"
	"github.com/martenlienen/gogs-github-mirror/internal/utils/flags"
)

const (
	mirrorCommandUseConstant              = "mirror"
	mirrorCommandShortDescriptionConstant = "Create Gogs mirrors for every GitHub repository of an account"
	mirrorCommandLongDescriptionConstant  = "mirror lists the repositories of the GitHub account, keeps the ones it owns (forks only when requested), resolves the Gogs owner once and submits one mirror migration per repository, printing one status line each."
	listCommandUseConstant                = "list"
	listCommandShortDescriptionConstant   = "List the GitHub repositories that mirror would submit"
	listCommandLongDescriptionConstant    = "list performs the same paginated listing and filtering as mirror and prints the selected repositories without contacting Gogs."

	sourceUserFlagNameConstant    = "gh-user"
	sourceUserFlagUsageConstant   = "GitHub account whose repositories are mirrored"
	sourceTokenFlagNameConstant   = "gh-token"
	sourceTokenFlagUsageConstant  = "GitHub token (prompted for when absent)"
	sourceAPIURLFlagNameConstant  = "gh-api-url"
	sourceAPIURLFlagUsageConstant = "GitHub API root URL"
	targetURLFlagNameConstant     = "gogs-url"
	targetURLFlagUsageConstant    = "Gogs server URL"
	targetUserFlagNameConstant    = "gogs-user"
	targetUserFlagUsageConstant   = "Gogs account used for the mirrors"
	targetTokenFlagNameConstant   = "gogs-token"
	targetTokenFlagUsageConstant  = "Gogs token (prompted for when absent)"
	organizationFlagNameConstant  = "gogs-org"
	organizationFlagUsageConstant = "Gogs organization to mirror to"
	withForksFlagNameConstant     = "with-forks"
	withForksFlagUsageConstant    = "Mirror forked repositories"
	dryRunFlagNameConstant        = "dry-run"
	dryRunFlagUsageConstant       = "Resolve the owner and print the repositories without creating mirrors"
	reportFlagNameConstant        = "report"
	reportFlagUsageConstant       = "Write a YAML run report to this path"
	metricsFileFlagNameConstant   = "metrics-file"
	metricsFileFlagUsageConstant  = "Write Prometheus run metrics to this textfile"

	sourceTokenPromptConstant = "Github token: "
	targetTokenPromptConstant = "Gogs token: "

	unsupportedValueTemplateConstant        = "unsupported value %q (expected one of %s)"
	choiceSeparatorConstant                 = ", "
	mirrorExecutionErrorTemplateConstant    = "mirror run failed: %w"
	listExecutionErrorTemplateConstant      = "repository listing failed: %w"
	tokenResolutionErrorTemplateConstant    = "unable to obtain %s: %w"
	listerCreationErrorTemplateConstant     = "unable to construct source lister: %w"
	gogsClientCreationErrorTemplateConstant = "unable to construct gogs client: %w"
	registrarCreationErrorTemplateConstant  = "unable to construct mirror registrar: %w"
	serviceCreationErrorTemplateConstant    = "unable to construct mirror service: %w"
	metricsWriteErrorTemplateConstant       = "unable to write metrics file %s: %w"
	sourceTokenDescriptionConstant          = "GitHub token"
	targetTokenDescriptionConstant          = "Gogs token"
	logMessageReportWrittenConstant         = "Run report written"
	logMessageMetricsWrittenConstant        = "Run metrics written"
	logMessageTokenFromSourceConstant       = "Token loaded from configured source"
	logFieldPathConstant                    = "path"
	logFieldTokenDescriptionConstant        = "token"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the mirror and list Cobra commands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Prompter              credentials.SecretPrompter
	TokenResolver         *credentials.TokenResolver
	HTTPClient            *http.Client
	Clock                 func() time.Time
}

type commandOptions struct {
	configuration CommandConfiguration
	sourceToken   string
	targetToken   string
}

// Build constructs the mirror command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           mirrorCommandUseConstant,
		Short:         mirrorCommandShortDescriptionConstant,
		Long:          mirrorCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMirror,
	}

	builder.addSourceFlags(command)
	command.Flags().String(targetURLFlagNameConstant, "", targetURLFlagUsageConstant)
	command.Flags().String(targetUserFlagNameConstant, "", targetUserFlagUsageConstant)
	command.Flags().String(targetTokenFlagNameConstant, "", targetTokenFlagUsageConstant)
	command.Flags().String(organizationFlagNameConstant, "", organizationFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, dryRunFlagNameConstant, "", false, dryRunFlagUsageConstant)
	command.Flags().String(reportFlagNameConstant, "", reportFlagUsageConstant)
	command.Flags().String(metricsFileFlagNameConstant, "", metricsFileFlagUsageConstant)

	return command, nil
}

// BuildList constructs the list command.
func (builder *CommandBuilder) BuildList() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           listCommandUseConstant,
		Short:         listCommandShortDescriptionConstant,
		Long:          listCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runList,
	}

	builder.addSourceFlags(command)

	return command, nil
}

func (builder *CommandBuilder) addSourceFlags(command *cobra.Command) {
	command.Flags().String(sourceUserFlagNameConstant, "", sourceUserFlagUsageConstant)
	command.Flags().String(sourceTokenFlagNameConstant, "", sourceTokenFlagUsageConstant)
	command.Flags().String(sourceAPIURLFlagNameConstant, "", sourceAPIURLFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, withForksFlagNameConstant, "", false, withForksFlagUsageConstant)
}

func (builder *CommandBuilder) runMirror(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, logger, true)
	if optionsError != nil {
		return optionsError
	}
	configuration := options.configuration

	lister, listerError := builder.newLister(logger, configuration, options.sourceToken)
	if listerError != nil {
		return listerError
	}

	targetHTTPClient := credentials.NewHTTPClient(
		credentials.NewTransport(configuration.Target.TargetAttacher(options.targetToken), builder.baseTransport()),
		builder.clientTemplate(configuration.Mirror.HTTPTimeout),
	)
	gogsClient, gogsClientError := gogs.NewClient(logger, targetHTTPClient, gogs.Configuration{BaseURL: configuration.Target.URL})
	if gogsClientError != nil {
		return fmt.Errorf(gogsClientCreationErrorTemplateConstant, gogsClientError)
	}

	registrar, registrarError := gogs.NewRegistrar(logger, gogsClient)
	if registrarError != nil {
		return fmt.Errorf(registrarCreationErrorTemplateConstant, registrarError)
	}

	metrics := NewMetrics()
	service, serviceError := NewService(ServiceDependencies{
		Logger:        logger,
		Lister:        lister,
		OwnerResolver: gogsClient,
		Registrar:     registrar,
		Output:        command.OutOrStdout(),
		Metrics:       metrics,
		Clock:         builder.Clock,
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	result, executionError := service.Execute(commandContext(command), Options{
		SourceUser:   configuration.Source.User,
		TargetUser:   configuration.Target.User,
		Organization: configuration.Target.Organization,
		IncludeForks: configuration.Mirror.WithForks,
		DryRun:       configuration.Mirror.DryRun,
	})
	if executionError != nil {
		return fmt.Errorf(mirrorExecutionErrorTemplateConstant, executionError)
	}

	if reportPath := configuration.Mirror.ReportPath; len(reportPath) > 0 {
		if reportError := WriteReportFile(reportPath, NewReport(result)); reportError != nil {
			return reportError
		}
		logger.Info(logMessageReportWrittenConstant, zap.String(logFieldPathConstant, reportPath))
	}

	if metricsPath := configuration.Mirror.MetricsPath; len(metricsPath) > 0 {
		if metricsError := metrics.WriteTextfile(metricsPath); metricsError != nil {
			return fmt.Errorf(metricsWriteErrorTemplateConstant, metricsPath, metricsError)
		}
		logger.Info(logMessageMetricsWrittenConstant, zap.String(logFieldPathConstant, metricsPath))
	}

	return nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, logger, false)
	if optionsError != nil {
		return optionsError
	}
	configuration := options.configuration

	lister, listerError := builder.newLister(logger, configuration, options.sourceToken)
	if listerError != nil {
		return listerError
	}

	selection, selectionError := SelectRepositories(commandContext(command), lister, SelectionOptions{
		SourceUser:   configuration.Source.User,
		IncludeForks: configuration.Mirror.WithForks,
	})
	if selectionError != nil {
		return fmt.Errorf(listExecutionErrorTemplateConstant, selectionError)
	}

	printer := NewStatusPrinter(command.OutOrStdout())
	for _, descriptor := range selection.Repositories {
		printer.Listing(descriptor)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, logger *zap.Logger, includeTarget bool) (commandOptions, error) {
	configuration := builder.resolveConfiguration()
	commandFlags := command.Flags()

	overrideString(command, sourceUserFlagNameConstant, &configuration.Source.User)
	overrideString(command, sourceAPIURLFlagNameConstant, &configuration.Source.APIURL)
	overrideBool(command, withForksFlagNameConstant, &configuration.Mirror.WithForks)
	if includeTarget {
		overrideString(command, targetURLFlagNameConstant, &configuration.Target.URL)
		overrideString(command, targetUserFlagNameConstant, &configuration.Target.User)
		overrideString(command, organizationFlagNameConstant, &configuration.Target.Organization)
		overrideBool(command, dryRunFlagNameConstant, &configuration.Mirror.DryRun)
		overrideString(command, reportFlagNameConstant, &configuration.Mirror.ReportPath)
		overrideString(command, metricsFileFlagNameConstant, &configuration.Mirror.MetricsPath)
	}
	configuration = configuration.Sanitize()

	if validationError := validateConfiguration(configuration, includeTarget); validationError != nil {
		return commandOptions{}, validationError
	}

	options := commandOptions{configuration: configuration}
	prompter := builder.resolvePrompter(command)

	sourceTokenFlag, _ := commandFlags.GetString(sourceTokenFlagNameConstant)
	sourceToken, sourceTokenError := builder.resolveToken(logger, prompter, sourceTokenFlag, configuration.Source.TokenSource, sourceTokenPromptConstant, sourceTokenDescriptionConstant)
	if sourceTokenError != nil {
		return commandOptions{}, sourceTokenError
	}
	options.sourceToken = sourceToken

	if includeTarget {
		targetTokenFlag, _ := commandFlags.GetString(targetTokenFlagNameConstant)
		targetToken, targetTokenError := builder.resolveToken(logger, prompter, targetTokenFlag, configuration.Target.TokenSource, targetTokenPromptConstant, targetTokenDescriptionConstant)
		if targetTokenError != nil {
			return commandOptions{}, targetTokenError
		}
		options.targetToken = targetToken
	}

	return options, nil
}

func validateConfiguration(configuration CommandConfiguration, includeTarget bool) error {
	if len(configuration.Source.User) == 0 {
		return InvalidInputError{FieldName: sourceUserFieldNameConstant, Message: requiredValueMessageConstant}
	}
	authSchemes := []string{AuthSchemeBasic, AuthSchemeBearer}
	if !slices.Contains(authSchemes, configuration.Source.AuthScheme) {
		return InvalidInputError{
			FieldName: sourceConfigurationKeyConstant + configurationKeySeparator + "auth_scheme",
			Message:   fmt.Sprintf(unsupportedValueTemplateConstant, configuration.Source.AuthScheme, strings.Join(authSchemes, choiceSeparatorConstant)),
		}
	}
	if !includeTarget {
		return nil
	}
	if len(configuration.Target.URL) == 0 {
		return InvalidInputError{FieldName: targetURLFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(configuration.Target.User) == 0 {
		return InvalidInputError{FieldName: targetUserFieldNameConstant, Message: requiredValueMessageConstant}
	}
	placements := []string{TokenPlacementQuery, TokenPlacementHeader}
	if !slices.Contains(placements, configuration.Target.TokenPlacement) {
		return InvalidInputError{
			FieldName: targetConfigurationKeyConstant + configurationKeySeparator + "token_placement",
			Message:   fmt.Sprintf(unsupportedValueTemplateConstant, configuration.Target.TokenPlacement, strings.Join(placements, choiceSeparatorConstant)),
		}
	}
	return nil
}

// resolveToken prefers the flag value, then the configured token source, then an interactive prompt.
func (builder *CommandBuilder) resolveToken(logger *zap.Logger, prompter credentials.SecretPrompter, flagValue string, tokenSource string, prompt string, description string) (string, error) {
	if trimmed := strings.TrimSpace(flagValue); len(trimmed) > 0 {
		return trimmed, nil
	}

	if len(tokenSource) > 0 {
		parsedSource, parseError := credentials.ParseTokenSource(tokenSource)
		if parseError != nil {
			return "", fmt.Errorf(tokenResolutionErrorTemplateConstant, description, parseError)
		}
		token, resolveError := builder.resolveTokenResolver().ResolveToken(parsedSource)
		if resolveError != nil {
			return "", fmt.Errorf(tokenResolutionErrorTemplateConstant, description, resolveError)
		}
		logger.Debug(logMessageTokenFromSourceConstant, zap.String(logFieldTokenDescriptionConstant, description))
		return token, nil
	}

	token, promptError := prompter.PromptSecret(prompt)
	if promptError != nil {
		return "", fmt.Errorf(tokenResolutionErrorTemplateConstant, description, promptError)
	}
	return token, nil
}

func (builder *CommandBuilder) newLister(logger *zap.Logger, configuration CommandConfiguration, token string) (*source.Lister, error) {
	var transport http.RoundTripper
	if configuration.Source.AuthScheme == AuthSchemeBearer {
		transport = credentials.NewBearerTransport(token, builder.baseTransport())
	} else {
		transport = credentials.NewTransport(configuration.Source.SourceAttacher(token), builder.baseTransport())
	}

	httpClient := credentials.NewHTTPClient(transport, builder.clientTemplate(configuration.Mirror.HTTPTimeout))
	lister, listerError := source.NewLister(logger, httpClient, source.Configuration{
		APIURL:  configuration.Source.APIURL,
		PerPage: configuration.Source.PerPage,
	})
	if listerError != nil {
		return nil, fmt.Errorf(listerCreationErrorTemplateConstant, listerError)
	}
	return lister, nil
}

func (builder *CommandBuilder) baseTransport() http.RoundTripper {
	if builder.HTTPClient != nil && builder.HTTPClient.Transport != nil {
		return builder.HTTPClient.Transport
	}
	return http.DefaultTransport
}

func (builder *CommandBuilder) clientTemplate(timeout time.Duration) *http.Client {
	template := &http.Client{}
	if builder.HTTPClient != nil {
		template.CheckRedirect = builder.HTTPClient.CheckRedirect
		template.Jar = builder.HTTPClient.Jar
		template.Timeout = builder.HTTPClient.Timeout
	}
	if timeout > 0 {
		template.Timeout = timeout
	}
	return template
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

// resolvePrompter returns one prompter per command run so buffered input is shared across prompts.
func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) credentials.SecretPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return credentials.NewTerminalPrompter(command.InOrStdin(), command.ErrOrStderr())
}

func (builder *CommandBuilder) resolveTokenResolver() *credentials.TokenResolver {
	if builder.TokenResolver != nil {
		return builder.TokenResolver
	}
	return credentials.NewTokenResolver(nil, nil)
}

func overrideString(command *cobra.Command, flagName string, target *string) {
	if !command.Flags().Changed(flagName) {
		return
	}
	value, _ := command.Flags().GetString(flagName)
	*target = value
}

func overrideBool(command *cobra.Command, flagName string, target *bool) {
	if !command.Flags().Changed(flagName) {
		return
	}
	value, _ := command.Flags().GetBool(flagName)
	*target = value
}

func commandContext(command *cobra.Command) context.Context {
	if executionContext := command.Context(); executionContext != nil {
		return executionContext
	}
	return context.Background()
}
