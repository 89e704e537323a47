// Package cli constructs the fskit command-line interface, wiring the Cobra
// command hierarchy, the configuration loader, and structured logging around
// the filesystem packages. Execute runs the default command set.
package cli
