// Package opening translates a declarative file-opening intent into an open
// mode and access level, then opens files through an afero backend.
//
// Intent values are immutable: every setter returns a modified copy, so an
// intent can be shared and reused safely. Resolve applies a fixed decision
// table that depends only on which flags are set, never on the order in which
// they were set.
package opening
