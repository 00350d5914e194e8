package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camtune",
		Subsystem: "stream",
		Name:      "active",
		Help:      "1 while a verified stream is held for the facing mode",
	}, []string{"facing"})

	streamWidth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camtune",
		Subsystem: "stream",
		Name:      "width_pixels",
		Help:      "Delivered width of the held stream",
	}, []string{"facing"})

	streamHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camtune",
		Subsystem: "stream",
		Name:      "height_pixels",
		Help:      "Delivered height of the held stream",
	}, []string{"facing"})

	devicesPresent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "camtune",
		Subsystem: "devices",
		Name:      "present",
		Help:      "Number of video capture devices on the host",
	})
)

// SetActiveStream records the held stream for a facing mode.
func SetActiveStream(facing string, width, height int) {
	streamActive.WithLabelValues(facing).Set(1)
	streamWidth.WithLabelValues(facing).Set(float64(width))
	streamHeight.WithLabelValues(facing).Set(float64(height))
}

// ClearActiveStream removes the stream series for a facing mode.
func ClearActiveStream(facing string) {
	streamActive.DeleteLabelValues(facing)
	streamWidth.DeleteLabelValues(facing)
	streamHeight.DeleteLabelValues(facing)
}

// SetDevicesPresent records the number of capture devices.
func SetDevicesPresent(n int) {
	devicesPresent.Set(float64(n))
}
