// Package config defines the application configuration and how it is
// assembled from its sources.
//
// Values are layered: built-in defaults, then the optional HCL project file
// (previewgo.hcl), then PREVIEWGO_* environment variables. Command-line
// flags are applied last by the cli package.
package config
