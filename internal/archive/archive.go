// Package archive keeps the results of report runs in MongoDB.
package archive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"relational-reports/internal/runner"
)

const Collection = "report_runs"

// Run describes one invocation of the report runner.
type Run struct {
	ID         uuid.UUID
	Driver     string
	StartedAt  time.Time
	Iterations int
	Result     *runner.Result
}

// DocumentStore is the part of database.MongoDriver the archive needs.
type DocumentStore interface {
	InsertOne(ctx context.Context, collection string, doc bson.M) (interface{}, error)
	FindOne(ctx context.Context, collection string, filter bson.M, dest interface{}) error
}

type Store struct {
	db     DocumentStore
	logger *log.Logger
}

func NewStore(db DocumentStore, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{db: db, logger: logger}
}

// Save archives run and returns its id. A run without an id gets a new one.
func (s *Store) Save(ctx context.Context, run Run) (string, error) {
	if run.Result == nil {
		return "", fmt.Errorf("archive run: no result")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if _, err := s.db.InsertOne(ctx, Collection, Document(run)); err != nil {
		return "", fmt.Errorf("archive run %s: %w", run.ID, err)
	}
	s.logger.Printf("archived run %s (%d operations)", run.ID, run.Result.Operations)
	return run.ID.String(), nil
}

// Load returns the archived document of run id.
func (s *Store) Load(ctx context.Context, id string) (bson.M, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("load run %q: %w", id, err)
	}
	var doc bson.M
	if err := s.db.FindOne(ctx, Collection, bson.M{"_id": id}, &doc); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return doc, nil
}

// Document renders run as stored in the archive. Durations are kept in
// microseconds.
func Document(run Run) bson.M {
	res := run.Result
	reports := bson.A{}
	for _, r := range res.Reports {
		doc := bson.M{
			"name":               r.Name,
			"rows":               r.Rows,
			"runs":               r.Runs,
			"errors":             r.Errors,
			"average_latency_us": r.AverageLatency.Microseconds(),
			"p95_latency_us":     r.P95Latency.Microseconds(),
		}
		if r.LastError != "" {
			doc["last_error"] = r.LastError
		}
		reports = append(reports, doc)
	}
	return bson.M{
		"_id":                run.ID.String(),
		"driver":             run.Driver,
		"started_at":         run.StartedAt.UTC(),
		"iterations":         run.Iterations,
		"operations":         res.Operations,
		"errors":             res.Errors,
		"error_rate":         res.ErrorRate,
		"throughput":         res.Throughput,
		"average_latency_us": res.AverageLatency.Microseconds(),
		"p95_latency_us":     res.P95Latency.Microseconds(),
		"p99_latency_us":     res.P99Latency.Microseconds(),
		"total_time_us":      res.TotalTime.Microseconds(),
		"reports":            reports,
	}
}
