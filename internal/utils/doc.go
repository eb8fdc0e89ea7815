// Package utils exposes the configuration and logging helpers shared by the
// CLI commands.
//
// ConfigurationLoader merges embedded defaults, an optional configuration
// file, and GOGSMIRROR_ environment variables through Viper. LoggerFactory
// builds zap loggers for the structured and console formats.
package utils
