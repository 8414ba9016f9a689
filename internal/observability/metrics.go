package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	quizSubmissionsTotal    *prometheus.CounterVec
	assignmentEventsTotal   *prometheus.CounterVec
	plagiarismChecksTotal   *prometheus.CounterVec
	plagiarismCheckSeconds  prometheus.Histogram
	extractionFailuresTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the assessment pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		quizSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of quiz submissions recorded, labelled by grading outcome.",
		}, []string{"graded"})

		assignmentEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_events_total",
			Help: "Total number of assignment submissions and grade updates.",
		}, []string{"action"})

		plagiarismChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagiarism_checks_total",
			Help: "Total number of plagiarism checks, labelled by result.",
		}, []string{"result"})

		plagiarismCheckSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plagiarism_check_seconds",
			Help:    "Latency distribution for full plagiarism checks including extraction.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		extractionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "extraction_failures_total",
			Help: "Number of submissions whose file yielded no extractable text.",
		})

		prometheus.MustRegister(
			quizSubmissionsTotal,
			assignmentEventsTotal,
			plagiarismChecksTotal,
			plagiarismCheckSeconds,
			extractionFailuresTotal,
		)
	})
}

// QuizSubmissions exposes the counter for recorded quiz submissions.
func QuizSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return quizSubmissionsTotal
}

// AssignmentEvents exposes the counter for assignment submission and grading actions.
func AssignmentEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentEventsTotal
}

// PlagiarismChecks exposes the counter for plagiarism check outcomes.
func PlagiarismChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return plagiarismChecksTotal
}

// PlagiarismLatency exposes the latency histogram for plagiarism checks.
func PlagiarismLatency() prometheus.Histogram {
	RegisterMetrics()
	return plagiarismCheckSeconds
}

// ExtractionFailures exposes the counter for empty extraction results.
func ExtractionFailures() prometheus.Counter {
	RegisterMetrics()
	return extractionFailuresTotal
}
