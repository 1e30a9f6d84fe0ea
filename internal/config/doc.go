// Package config defines the format-agnostic model of a Nastran component
// manifest, along with the Loader interface used to read manifests from
// various sources.
//
// A `config.Component` is the single source of truth for the `nastran`
// package. Concrete loaders, such as the HCL one, are provided in separate
// packages.
package config
