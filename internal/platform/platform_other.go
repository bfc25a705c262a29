//go:build !windows && !linux

package platform

func newNative() (Adapter, error) {
	return Unsupported(), nil
}
