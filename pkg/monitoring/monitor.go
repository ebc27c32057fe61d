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

	AnswersRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_answers_recorded_total",
			Help: "Answers accepted into attempt ledgers",
		},
		[]string{"kind", "correct"},
	)

	LedgerConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_ledger_conflicts_total",
			Help: "Answers rejected because the try number was already recorded",
		},
	)

	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_attempt_submissions_total",
			Help: "Submitted attempts by kind and mastery level",
		},
		[]string{"kind", "mastery"},
	)

	ScorePercent = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_attempt_score_percent",
			Help:    "Score distribution of submitted attempts",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"kind"},
	)

	DirectivesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_practice_directives_total",
			Help: "Practice generation directives by trigger and outcome",
		},
		[]string{"trigger", "result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AnswersRecorded,
			LedgerConflicts,
			Submissions,
			ScorePercent,
			DirectivesPublished,
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

func ObserveAnswer(kind string, correct bool) {
	AnswersRecorded.WithLabelValues(kind, strconv.FormatBool(correct)).Inc()
}

func ObserveSubmission(kind, mastery string, score int) {
	Submissions.WithLabelValues(kind, mastery).Inc()
	ScorePercent.WithLabelValues(kind).Observe(float64(score))
}
