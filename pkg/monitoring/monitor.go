package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuestionSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbt_question_submissions_total",
			Help: "Question editor submissions by type and result",
		},
		[]string{"type", "result"},
	)

	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbt_transfers_total",
			Help: "Import/export requests forwarded to the exam API",
		},
		[]string{"kind", "status"},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbt_uploads_total",
			Help: "Rich text uploads by mode and result",
		},
		[]string{"mode", "result"},
	)

	PDFRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cbt_pdf_render_duration_seconds",
			Help:    "Time spent rendering answer key PDFs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuestionSubmissions,
			TransfersTotal,
			UploadsTotal,
			PDFRenderDuration,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
