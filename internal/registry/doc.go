// Package registry provides the central "glue" between component manifests
// and Go code.
//
// The Registry maps the string identifiers used in manifests (an output's
// `func` and a component's `model`) to the compiled Go functions that
// implement them. Modules add their entries through Module.Register during
// application startup, after which the loaded manifests are validated
// against the registry so that a misspelled name fails before any solver
// run.
package registry
