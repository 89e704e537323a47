// Package pathwalk computes ancestor chains of filesystem paths without
// touching the filesystem.
package pathwalk
