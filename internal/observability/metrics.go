package observability

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Metrics is a small Prometheus text-format registry for the HTTP surface, upstream calls and
// curation items. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	curationItems *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("langbridge_api_requests_total", "HTTP requests by route and status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("langbridge_api_request_duration_seconds", "HTTP request latency.", []string{"method", "route"}, nil),
		apiInflight: NewGauge("langbridge_api_inflight_requests", "HTTP requests currently being served."),

		llmRequests: NewCounterVec("langbridge_llm_requests_total", "Upstream text-generation calls by outcome.", []string{"model", "status"}),
		llmLatency: NewHistogramVec("langbridge_llm_request_duration_seconds", "Upstream text-generation latency.", []string{"model"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}),

		curationItems: NewCounterVec("langbridge_curation_items_total", "Curation items by stage and terminal state.", []string{"stage", "state"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	method = strings.ToUpper(method)
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, statusLabel(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, status)
	m.llmLatency.Observe(dur.Seconds(), model)
}

// ObserveCurationItem counts one pipeline item reaching a terminal state.
func (m *Metrics) ObserveCurationItem(stage, state string) {
	if m == nil {
		return
	}
	m.curationItems.Inc(stage, state)
}

func (m *Metrics) CurationItems(stage, state string) float64 {
	if m == nil {
		return 0
	}
	return m.curationItems.Value(stage, state)
}

func (m *Metrics) LLMRequests(model, status string) float64 {
	if m == nil {
		return 0
	}
	return m.llmRequests.Value(model, status)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.llmRequests,
		m.llmLatency,
		m.curationItems,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func statusLabel(status int) string {
	if status <= 0 {
		return "0"
	}
	return strconv.Itoa(status)
}
