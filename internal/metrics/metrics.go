// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application counters.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec
	LoginsTotal      *prometheus.CounterVec
	QRGeneratedTotal *prometheus.CounterVec
	SessionsClosed   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrattend",
			Name:      "scans_total",
			Help:      "Scan submissions by result.",
		}, []string{"result"}),
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrattend",
			Name:      "logins_total",
			Help:      "Login attempts by role and result.",
		}, []string{"role", "result"}),
		QRGeneratedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrattend",
			Name:      "qr_generated_total",
			Help:      "QR images generated per class.",
		}, []string{"class_id"}),
		SessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrattend",
			Name:      "sessions_expired_total",
			Help:      "Class sessions closed by the expiry sweep.",
		}),
	}
	reg.MustRegister(m.ScansTotal, m.LoginsTotal, m.QRGeneratedTotal, m.SessionsClosed)
	return m
}

// Scan counts one scan outcome. Safe on a nil receiver.
func (m *Metrics) Scan(result string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(result).Inc()
}

// Login counts one login attempt. Safe on a nil receiver.
func (m *Metrics) Login(role string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(role, result).Inc()
}

// QRGenerated counts one image generation. Safe on a nil receiver.
func (m *Metrics) QRGenerated(classID string) {
	if m == nil {
		return
	}
	m.QRGeneratedTotal.WithLabelValues(classID).Inc()
}

// SessionsExpired adds n sweep-closed sessions. Safe on a nil receiver.
func (m *Metrics) SessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsClosed.Add(float64(n))
}

// Handler serves the collectors registered in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
