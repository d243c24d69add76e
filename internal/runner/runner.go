package runner

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Report is one named read operation. Run returns the number of records the
// report produced.
type Report struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

type ReportResult struct {
	Name           string        `json:"name"`
	Rows           int           `json:"rows"`
	Runs           int64         `json:"runs"`
	Errors         int64         `json:"errors"`
	LastError      string        `json:"last_error,omitempty"`
	AverageLatency time.Duration `json:"average_latency"`
	P95Latency     time.Duration `json:"p95_latency"`
}

type Result struct {
	Operations     int64          `json:"operations"`
	Errors         int64          `json:"errors"`
	Throughput     float64        `json:"throughput"`
	P95Latency     time.Duration  `json:"p95_latency"`
	P99Latency     time.Duration  `json:"p99_latency"`
	AverageLatency time.Duration  `json:"average_latency"`
	ErrorRate      float64        `json:"error_rate"`
	TotalTime      time.Duration  `json:"total_time"`
	Reports        []ReportResult `json:"reports"`
}

const maxLatencyMicros = int64(10 * time.Minute / time.Microsecond)

var ErrNoReports = errors.New("no reports to run")

// Run executes every report iterations times, one after the other. A failing
// report is counted and logged; it does not stop the run. Only cancellation of
// ctx ends the run early.
func Run(ctx context.Context, reports []Report, iterations int, logger *log.Logger) (*Result, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	if iterations < 1 {
		iterations = 1
	}
	if logger == nil {
		logger = log.Default()
	}

	overall := hdrhistogram.New(1, maxLatencyMicros, 3)
	perReport := make([]*hdrhistogram.Histogram, len(reports))
	result := &Result{Reports: make([]ReportResult, len(reports))}
	for i, r := range reports {
		perReport[i] = hdrhistogram.New(1, maxLatencyMicros, 3)
		result.Reports[i].Name = r.Name
	}

	start := time.Now()
	for it := 0; it < iterations; it++ {
		for i, r := range reports {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rr := &result.Reports[i]

			began := time.Now()
			rows, err := r.Run(ctx)
			elapsed := time.Since(began).Microseconds()
			if elapsed < 1 {
				elapsed = 1
			}
			if elapsed > maxLatencyMicros {
				elapsed = maxLatencyMicros
			}

			result.Operations++
			rr.Runs++
			if err != nil {
				result.Errors++
				rr.Errors++
				rr.LastError = err.Error()
				logger.Printf("report %s failed: %v", r.Name, err)
				continue
			}
			rr.Rows = rows
			_ = overall.RecordValue(elapsed)
			_ = perReport[i].RecordValue(elapsed)
		}
	}
	result.TotalTime = time.Since(start)

	result.AverageLatency = micros(overall.Mean())
	result.P95Latency = micros(float64(overall.ValueAtQuantile(95)))
	result.P99Latency = micros(float64(overall.ValueAtQuantile(99)))
	result.ErrorRate = float64(result.Errors) / float64(result.Operations)
	if secs := result.TotalTime.Seconds(); secs > 0 {
		result.Throughput = float64(result.Operations-result.Errors) / secs
	}
	for i := range result.Reports {
		result.Reports[i].AverageLatency = micros(perReport[i].Mean())
		result.Reports[i].P95Latency = micros(float64(perReport[i].ValueAtQuantile(95)))
	}

	logger.Printf("ran %d report(s) x%d: %d operation(s), %d error(s) in %s",
		len(reports), iterations, result.Operations, result.Errors, result.TotalTime)
	return result, nil
}

func micros(v float64) time.Duration {
	return time.Duration(v * float64(time.Microsecond))
}
