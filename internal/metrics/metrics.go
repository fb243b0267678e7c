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
// サービス層とリソースクライアントから利用する。
type MetricsCollector interface {
	RecordResourceCall(collection, method string, statusCode int, duration time.Duration)
	RecordHTTPStatus(method, path string, statusCode int)
	RecordApplicationSubmitted()
	RecordOfferCreated()
	RecordApplicationsCascadeDeleted(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	resourceCalls     *prometheus.CounterVec
	resourceLatency   prometheus.Histogram
	httpStatus        *prometheus.CounterVec
	applications      prometheus.Counter
	offers            prometheus.Counter
	cascadeDeletedApp prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		resourceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesk_resource_calls_total",
			Help: "リソースサーバー呼び出しの合計数",
		}, []string{"collection", "method", "status_code"}),
		resourceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobdesk_resource_latency_seconds",
			Help:    "リソースサーバー呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"method", "status_code"}),
		applications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdesk_applications_submitted_total",
			Help: "送信された応募の合計数",
		}),
		offers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdesk_offers_created_total",
			Help: "作成された求人の合計数",
		}),
		cascadeDeletedApp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdesk_applications_cascade_deleted_total",
			Help: "求人削除に伴い削除された応募の合計数",
		}),
	}

	reg.MustRegister(
		c.resourceCalls,
		c.resourceLatency,
		c.httpStatus,
		c.applications,
		c.offers,
		c.cascadeDeletedApp,
	)

	return c
}

// RecordResourceCall はリソースサーバー呼び出しの結果とレイテンシを記録する。
func (c *Collector) RecordResourceCall(collection, method string, statusCode int, duration time.Duration) {
	c.resourceCalls.WithLabelValues(collection, method, strconv.Itoa(statusCode)).Inc()
	c.resourceLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はダッシュボードAPIのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(method, path string, statusCode int) {
	c.httpStatus.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordApplicationSubmitted は応募の送信を記録する。
func (c *Collector) RecordApplicationSubmitted() {
	c.applications.Inc()
}

// RecordOfferCreated は求人の作成を記録する。
func (c *Collector) RecordOfferCreated() {
	c.offers.Inc()
}

// RecordApplicationsCascadeDeleted は求人削除に伴う応募削除数を記録する。
func (c *Collector) RecordApplicationsCascadeDeleted(count int) {
	c.cascadeDeletedApp.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
