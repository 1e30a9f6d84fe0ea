// Package nastran turns a declarative component definition into one
// evaluation of a Nastran analysis.
//
// A Component classifies each declared input as a deck replacement, a text
// placeholder or a plain value, and each declared output as a registered
// callback, a table locator or a value left to the model's post-processing
// hook. Execute then patches the template deck, runs the solver in a fresh
// working directory, reads the results and applies the retention policy to
// the directory.
//
// A Component is not safe for concurrent use: Execute must not be called
// from several goroutines at once.
package nastran
