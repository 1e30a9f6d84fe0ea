// Package app contains the core application logic. It loads component
// manifests, runs the requested evaluations and prints their outputs,
// decoupled from any specific entrypoint like a CLI.
package app
