// Package api defines the public types and contracts of the reviewflow
// engine: artifacts, step definitions, executor/guard interfaces, user
// commands, feedback rendering, observers, and the error taxonomy.
//
// Most applications import the root reviewflow package, which re-exports
// everything here; api exists so that the internal engine and external
// integrations share one dependency-free vocabulary.
package api
