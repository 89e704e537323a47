// Package hierarchy locates the nearest directory, walking upward from a
// starting point, that contains a given marker file.
package hierarchy
