// Package metrics is the Go realization of the original source's
// metrics.rs: the same counters, histograms, and gauges under the same
// media_hardening_media_processor_* names, registered against a
// dedicated prometheus.Registry rather than the global one so tests can
// construct an isolated Registry per case.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "media_hardening"

// Registry holds every metric this process records. NewRegistry
// constructs one fully registered and ready to serve.
type Registry struct {
	reg *prometheus.Registry

	FilesProcessedTotal          *prometheus.CounterVec
	FilesFailedTotal              *prometheus.CounterVec
	SecurityViolationsTotal       *prometheus.CounterVec
	MalwareDetectedTotal          prometheus.Counter
	FilesQuarantinedTotal         prometheus.Counter
	BufferOverflowAttemptsTotal   prometheus.Counter
	ResourceLimitViolationsTotal  *prometheus.CounterVec
	ProcessingDurationSeconds     *prometheus.HistogramVec
	FileSizeBytes                 *prometheus.HistogramVec
	MemoryBytes                   prometheus.Gauge
	MemoryLimitBytes               prometheus.Gauge
	CPUSecondsTotal                prometheus.Counter
	MalformedFilesTotal            *prometheus.CounterVec
	ValidationFailuresTotal        *prometheus.CounterVec
	SuspiciousPatternsTotal        *prometheus.CounterVec
	SeccompViolationsTotal         prometheus.Counter
	MemoryViolationsTotal          *prometheus.CounterVec
	ErrorsTotal                    *prometheus.CounterVec
	KnownCVEs                      prometheus.Gauge
	LastSecurityAuditTimestamp     prometheus.Gauge
}

// NewRegistry builds and registers every metric. memoryLimitBytes sets
// the initial MemoryLimitBytes gauge value (2GB in the original
// source); auditTimestamp seeds LastSecurityAuditTimestamp.
func NewRegistry(memoryLimitBytes float64, auditTimestamp float64) *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.FilesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_files_processed_total",
		Help: "Total number of files processed",
	}, []string{"format", "status"})

	r.FilesFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_files_failed_total",
		Help: "Total number of files that failed processing",
	}, []string{"format", "error_type"})

	r.SecurityViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_security_violations_total",
		Help: "Total security violations detected",
	}, []string{"violation_type", "format"})

	r.MalwareDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_hardening_media_processor_malware_detected_total",
		Help: "Total malware detections",
	})

	r.FilesQuarantinedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_hardening_media_processor_files_quarantined_total",
		Help: "Total files quarantined",
	})

	r.BufferOverflowAttemptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_hardening_media_processor_buffer_overflow_attempts_total",
		Help: "Total buffer overflow attempts detected",
	})

	r.ResourceLimitViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_resource_limit_violations_total",
		Help: "Resource limit violations",
	}, []string{"limit_type"})

	r.ProcessingDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "media_processor_processing_duration_seconds",
		Help:    "Processing duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
	}, []string{"format"})

	r.FileSizeBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "media_processor_file_size_bytes",
		Help:    "File size distribution in bytes",
		Buckets: []float64{1024, 10240, 102400, 1048576, 10485760, 104857600},
	}, []string{"format"})

	r.MemoryBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "media_hardening_media_processor_memory_bytes",
		Help: "Current memory usage in bytes",
	})

	r.MemoryLimitBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "media_hardening_media_processor_memory_limit_bytes",
		Help: "Memory limit in bytes",
	})

	r.CPUSecondsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_hardening_media_processor_cpu_seconds_total",
		Help: "Total CPU time used",
	})

	r.MalformedFilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_malformed_files_total",
		Help: "Total malformed files detected",
	}, []string{"format"})

	r.ValidationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_validation_failures_total",
		Help: "Validation check failures",
	}, []string{"check_type"})

	r.SuspiciousPatternsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_suspicious_patterns_total",
		Help: "Suspicious patterns detected",
	}, []string{"pattern", "format"})

	r.SeccompViolationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_hardening_media_processor_seccomp_violations_total",
		Help: "Seccomp syscall violations",
	})

	r.MemoryViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_memory_violations_total",
		Help: "Memory safety violations",
	}, []string{"type"})

	r.ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "media_processor_errors_total",
		Help: "Total errors by type",
	}, []string{"error_type"})

	r.KnownCVEs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "media_hardening_media_processor_known_cves",
		Help: "Number of known CVEs in dependencies",
	})

	r.LastSecurityAuditTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "media_hardening_media_processor_last_security_audit_timestamp",
		Help: "Unix timestamp of last security audit",
	})

	r.reg.MustRegister(
		r.FilesProcessedTotal, r.FilesFailedTotal, r.SecurityViolationsTotal,
		r.MalwareDetectedTotal, r.FilesQuarantinedTotal, r.BufferOverflowAttemptsTotal,
		r.ResourceLimitViolationsTotal, r.ProcessingDurationSeconds, r.FileSizeBytes,
		r.MemoryBytes, r.MemoryLimitBytes, r.CPUSecondsTotal, r.MalformedFilesTotal,
		r.ValidationFailuresTotal, r.SuspiciousPatternsTotal, r.SeccompViolationsTotal,
		r.MemoryViolationsTotal, r.ErrorsTotal, r.KnownCVEs, r.LastSecurityAuditTimestamp,
	)

	r.MemoryLimitBytes.Set(memoryLimitBytes)
	r.KnownCVEs.Set(0)
	r.LastSecurityAuditTimestamp.Set(auditTimestamp)

	return r
}

// Gatherer exposes the underlying registry to promhttp.Handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// RecordFileProcessed mirrors record_file_processed.
func (r *Registry) RecordFileProcessed(format string, fileSize int, durationSecs float64) {
	r.FilesProcessedTotal.WithLabelValues(format, "success").Inc()
	r.FileSizeBytes.WithLabelValues(format).Observe(float64(fileSize))
	r.ProcessingDurationSeconds.WithLabelValues(format).Observe(durationSecs)
}

// RecordFileFailed mirrors record_file_failed.
func (r *Registry) RecordFileFailed(format, errorType string) {
	r.FilesFailedTotal.WithLabelValues(format, errorType).Inc()
	r.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordSecurityViolation mirrors record_security_violation.
func (r *Registry) RecordSecurityViolation(violationType, format string) {
	r.SecurityViolationsTotal.WithLabelValues(violationType, format).Inc()
}

// RecordMalformedFile mirrors record_malformed_file.
func (r *Registry) RecordMalformedFile(format string) {
	r.MalformedFilesTotal.WithLabelValues(format).Inc()
}

// UpdateMemoryUsage mirrors update_memory_usage.
func (r *Registry) UpdateMemoryUsage(bytes int64) {
	r.MemoryBytes.Set(float64(bytes))
}
