//go:build !unix

package provider

// NewDefault constructs the production provider for this platform: a
// portable slice-backed reservation with a stable base address.
func NewDefault(maxBytes uintptr) (Provider, error) {
	return NewSliceProvider(maxBytes), nil
}
