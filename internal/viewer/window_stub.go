//go:build !cgo

package viewer

import "errors"

func newWindow(string) (Viewer, error) {
	return nil, errors.New("window viewer requires cgo (build/run with CGO_ENABLED=1)")
}
