//go:build !debug

package debug

// Debug reports whether the binary was compiled with the debug tag.
const Debug = false
