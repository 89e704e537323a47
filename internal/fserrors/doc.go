// Package fserrors classifies filesystem failures into a small set of kinds
// (invalid argument, invalid configuration, already exists, not found,
// permission denied, I/O failure) shared by the gateway, opener, and locator.
//
// OperationError values match both the package sentinels and the io/fs
// sentinels through errors.Is, so callers may test either.
package fserrors
