//go:build !linux

package devices

import "context"

type noDetector struct{}

func newDetector() Detector {
	return noDetector{}
}

// FindDevices reports no devices; capture nodes only exist on Linux.
func (noDetector) FindDevices() ([]Device, error) {
	return nil, nil
}

type noSource struct{}

// NewChangeSource returns a source that cannot deliver changes.
func NewChangeSource() ChangeSource {
	return noSource{}
}

func (noSource) Changes(context.Context) (<-chan struct{}, error) {
	return nil, ErrMonitoringUnavailable
}
