package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	// Запросы к REST API посещаемости: гистограмма по эндпоинту и классу
	// статуса. endpoint — фиксированное имя операции, не путь: пути содержат
	// даты и id, а кардинальность лейблов должна быть ограниченной.
	APIRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attbot", Name: "api_request_seconds", Help: "Attendance API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "code"})
	STTRequests = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attbot", Name: "stt_request_seconds", Help: "Speech-to-text request latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing, APIRequests, STTRequests)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveAPIRequest — status=0 означает транспортную ошибку (код "err").
func ObserveAPIRequest(endpoint string, status int, d time.Duration) {
	code := "err"
	if status > 0 {
		code = strconv.Itoa(status / 100 * 100)
	}
	APIRequests.WithLabelValues(endpoint, code).Observe(d.Seconds())
}
