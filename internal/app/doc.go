// Package app wires application dependencies for the CLI.
//
// It builds the PQC backend, token signer, file store, audit sinks and
// the mesh registry from Config, exposing them via the Wire struct for
// commands to use.
package app
