// Package files exposes the filesystem abstraction as Cobra commands: ancestor
// search, intent-driven file opening, and the gateway operations.
package files
