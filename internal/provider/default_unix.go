//go:build unix

package provider

// NewDefault constructs the production provider for this platform: an
// mmap'd reservation with a stable base address.
func NewDefault(maxBytes uintptr) (Provider, error) {
	return NewMmapProvider(maxBytes)
}
