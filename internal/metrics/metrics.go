// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーや上流クライアントから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordUpstreamLatency(dependency string, duration time.Duration)
	RecordUpstreamFailure(dependency string, reason string)
	RecordSessionRefresh()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	loginSuccess    prometheus.Counter
	loginFail       *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	upstreamFail    *prometheus.CounterVec
	sessionRefresh  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftdeck_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftdeck_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftdeck_login_fail_total",
			Help: "ログイン失敗の合計数（理由別）",
		}, []string{"reason"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "craftdeck_upstream_latency_seconds",
			Help:    "外部依存呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"dependency"}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftdeck_upstream_fail_total",
			Help: "外部依存呼び出し失敗の合計数（依存先・理由別）",
		}, []string{"dependency", "reason"}),
		sessionRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftdeck_session_refresh_total",
			Help: "スライディングTTLによるセッション再発行の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.loginSuccess,
		c.loginFail,
		c.upstreamLatency,
		c.upstreamFail,
		c.sessionRefresh,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordUpstreamLatency は外部依存呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(dependency string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(dependency).Observe(duration.Seconds())
}

// RecordUpstreamFailure は外部依存呼び出しの失敗を記録する。
func (c *Collector) RecordUpstreamFailure(dependency string, reason string) {
	c.upstreamFail.WithLabelValues(dependency, reason).Inc()
}

// RecordSessionRefresh はセッション再発行を記録する。
func (c *Collector) RecordSessionRefresh() {
	c.sessionRefresh.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
