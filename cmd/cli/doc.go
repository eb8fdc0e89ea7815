// Package cli constructs the gogs-github-mirror command-line interface. It
// wires the Cobra command hierarchy to the embedded default configuration,
// the Viper-backed configuration loader and the zap logger, and exposes
// Execute for the main package.
package cli
