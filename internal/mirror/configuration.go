package mirror

import (
	"strings"
	"time"

	"github.com/martenlienen/gogs-github-mirror/internal/credentials"
	"github.com/martenlienen/gogs-github-mirror/internal/source"
	pathutils "github.com/martenlienen/gogs-github-mirror/internal/utils/path"
)

// Source authentication schemes.
const (
	AuthSchemeBasic  = "basic"
	AuthSchemeBearer = "bearer"
)

// Target token placements.
const (
	TokenPlacementQuery  = "query"
	TokenPlacementHeader = "header"
)

const (
	sourceConfigurationKeyConstant = "source"
	targetConfigurationKeyConstant = "target"
	runConfigurationKeyConstant    = "mirror"
	configurationKeySeparator      = "."
)

var configurationPathExpander = pathutils.NewHomeExpander()

// SourceConfiguration describes the GitHub side of a run.
type SourceConfiguration struct {
	APIURL      string `mapstructure:"api_url"`
	User        string `mapstructure:"user"`
	TokenSource string `mapstructure:"token_source"`
	AuthScheme  string `mapstructure:"auth_scheme"`
	PerPage     int    `mapstructure:"per_page"`
}

// TargetConfiguration describes the Gogs side of a run.
type TargetConfiguration struct {
	URL            string `mapstructure:"url"`
	User           string `mapstructure:"user"`
	TokenSource    string `mapstructure:"token_source"`
	TokenPlacement string `mapstructure:"token_placement"`
	Organization   string `mapstructure:"organization"`
}

// RunConfiguration controls filtering and run side effects.
type RunConfiguration struct {
	WithForks   bool          `mapstructure:"with_forks"`
	DryRun      bool          `mapstructure:"dry_run"`
	ReportPath  string        `mapstructure:"report_path"`
	MetricsPath string        `mapstructure:"metrics_path"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// CommandConfiguration groups the persisted settings of the mirror and list commands.
type CommandConfiguration struct {
	Source SourceConfiguration `mapstructure:"source"`
	Target TargetConfiguration `mapstructure:"target"`
	Mirror RunConfiguration    `mapstructure:"mirror"`
}

// DefaultCommandConfiguration returns baseline values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Source: SourceConfiguration{
			APIURL:     source.DefaultAPIURLConstant,
			AuthScheme: AuthSchemeBasic,
		},
		Target: TargetConfiguration{
			TokenPlacement: TokenPlacementQuery,
		},
	}
}

// DefaultConfigurationValues lists the defaults under their configuration keys.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(sourceConfigurationKeyConstant, "api_url"):         defaults.Source.APIURL,
		configurationKey(sourceConfigurationKeyConstant, "user"):            defaults.Source.User,
		configurationKey(sourceConfigurationKeyConstant, "token_source"):    defaults.Source.TokenSource,
		configurationKey(sourceConfigurationKeyConstant, "auth_scheme"):     defaults.Source.AuthScheme,
		configurationKey(sourceConfigurationKeyConstant, "per_page"):        defaults.Source.PerPage,
		configurationKey(targetConfigurationKeyConstant, "url"):             defaults.Target.URL,
		configurationKey(targetConfigurationKeyConstant, "user"):            defaults.Target.User,
		configurationKey(targetConfigurationKeyConstant, "token_source"):    defaults.Target.TokenSource,
		configurationKey(targetConfigurationKeyConstant, "token_placement"): defaults.Target.TokenPlacement,
		configurationKey(targetConfigurationKeyConstant, "organization"):    defaults.Target.Organization,
		configurationKey(runConfigurationKeyConstant, "with_forks"):         defaults.Mirror.WithForks,
		configurationKey(runConfigurationKeyConstant, "dry_run"):            defaults.Mirror.DryRun,
		configurationKey(runConfigurationKeyConstant, "report_path"):        defaults.Mirror.ReportPath,
		configurationKey(runConfigurationKeyConstant, "metrics_path"):       defaults.Mirror.MetricsPath,
		configurationKey(runConfigurationKeyConstant, "http_timeout"):       defaults.Mirror.HTTPTimeout,
	}
}

// Sanitize trims values, lowercases enumerations and expands home-relative paths.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Source.APIURL = strings.TrimSpace(configuration.Source.APIURL)
	sanitized.Source.User = strings.TrimSpace(configuration.Source.User)
	sanitized.Source.TokenSource = strings.TrimSpace(configuration.Source.TokenSource)
	sanitized.Source.AuthScheme = strings.ToLower(strings.TrimSpace(configuration.Source.AuthScheme))
	if len(sanitized.Source.AuthScheme) == 0 {
		sanitized.Source.AuthScheme = AuthSchemeBasic
	}
	if sanitized.Source.PerPage < 0 {
		sanitized.Source.PerPage = 0
	}

	sanitized.Target.URL = strings.TrimSpace(configuration.Target.URL)
	sanitized.Target.User = strings.TrimSpace(configuration.Target.User)
	sanitized.Target.TokenSource = strings.TrimSpace(configuration.Target.TokenSource)
	sanitized.Target.TokenPlacement = strings.ToLower(strings.TrimSpace(configuration.Target.TokenPlacement))
	if len(sanitized.Target.TokenPlacement) == 0 {
		sanitized.Target.TokenPlacement = TokenPlacementQuery
	}
	sanitized.Target.Organization = strings.TrimSpace(configuration.Target.Organization)

	sanitized.Mirror.ReportPath = expandPath(configuration.Mirror.ReportPath)
	sanitized.Mirror.MetricsPath = expandPath(configuration.Mirror.MetricsPath)
	if sanitized.Mirror.HTTPTimeout < 0 {
		sanitized.Mirror.HTTPTimeout = 0
	}

	return sanitized
}

// SourceAttacher returns the credential placement for the source API. Bearer
// tokens are handled by NewSourceTransport instead and yield nil here.
func (configuration SourceConfiguration) SourceAttacher(token string) credentials.Attacher {
	if configuration.AuthScheme == AuthSchemeBearer {
		return nil
	}
	return credentials.BasicAuth{Username: configuration.User, Password: token}
}

// TargetAttacher returns the credential placement for the Gogs API.
func (configuration TargetConfiguration) TargetAttacher(token string) credentials.Attacher {
	if configuration.TokenPlacement == TokenPlacementHeader {
		return credentials.HeaderToken{Scheme: credentials.DefaultTokenSchemeConstant, Token: token}
	}
	return credentials.QueryToken{Parameter: credentials.DefaultTokenQueryParameterConstant, Token: token}
}

func configurationKey(section string, name string) string {
	return section + configurationKeySeparator + name
}

func expandPath(candidatePath string) string {
	trimmed := strings.TrimSpace(candidatePath)
	if len(trimmed) == 0 {
		return ""
	}
	return configurationPathExpander.Expand(trimmed)
}
