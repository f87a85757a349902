//go:build !linux

package platform

// OpenHost is only implemented on Linux.
func OpenHost(string) (Host, error) {
	return nil, ErrUnsupported
}
