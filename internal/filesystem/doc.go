// Package filesystem provides Gateway, a thin sequential layer over an afero
// backend that answers existence questions, moves, copies, and deletes files
// and directory trees, creates directories, lists files with optional glob
// filtering, and probes directory writability.
//
// Move and Copy refuse to overwrite: the destination is checked explicitly
// before any primitive runs, because rename and copy primitives disagree about
// existing targets across files and directories. Delete on a missing path and
// CreateDirectory on an existing directory succeed without doing anything.
//
// IsDirectoryWritable is advisory. A true result does not guarantee that a
// later write succeeds.
package filesystem
