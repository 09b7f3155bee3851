package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/stiedi/internal/protocol/edi"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	tagsAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "tag",
			Name:      "assembled_total",
			Help:      "TAG items assembled, by tag name.",
		},
		[]string{"tag"},
	)
	tagBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "tag",
			Name:      "bytes_total",
			Help:      "Bytes of assembled TAG items including the envelope, by tag name.",
		},
		[]string{"tag"},
	)
	tagFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "tag",
			Name:      "failures_total",
			Help:      "TAG item assembly failures, by error kind.",
		},
		[]string{"kind"},
	)
	afPackets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "af",
			Name:      "packets_total",
			Help:      "AF packets produced.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stiedi",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	afBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stiedi",
			Subsystem: "af",
			Name:      "bytes_total",
			Help:      "Bytes of AF packets produced.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(tagsAssembled, tagBytes, tagFailures, afPackets, afBytes, httpRequests, httpDuration)
	})
}

// RecordTag counts one assembled item. name is the printable tag name.
func RecordTag(name string, size int) {
	RegisterMetrics()
	tagsAssembled.WithLabelValues(name).Inc()
	tagBytes.WithLabelValues(name).Add(float64(size))
}

func RecordTagFailure(err error) {
	RegisterMetrics()
	tagFailures.WithLabelValues(ErrorKind(err)).Inc()
}

func RecordAFPacket(size int) {
	RegisterMetrics()
	afPackets.Inc()
	afBytes.Add(float64(size))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// ErrorKind maps an assembly error onto a bounded label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, edi.ErrOversizeField):
		return "oversize_field"
	case errors.Is(err, edi.ErrMissingPayload):
		return "missing_payload"
	case errors.Is(err, edi.ErrLengthOverflow):
		return "length_overflow"
	case errors.Is(err, edi.ErrInvalidTimeOffset):
		return "invalid_time_offset"
	default:
		return "other"
	}
}
