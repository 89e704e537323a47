//go:build !unix

package filesystem

// accessProbe is unavailable on this platform; callers fall back to a probe file.
func accessProbe(string) (bool, bool) {
	return false, false
}
