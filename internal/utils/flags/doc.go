// Package flags provides pflag helpers shared by the fskit commands.
package flags
