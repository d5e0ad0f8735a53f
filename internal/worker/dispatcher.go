// Package worker runs background jobs requested over a channel and reports
// their outcome on a response channel.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridelog/internal/service"
)

// Kind names a job type
type Kind string

const (
	KindImportActivity         Kind = "import-activity"
	KindSegmentCreated         Kind = "segment-created"
	KindFindSegmentsOnActivity Kind = "find-segments-on-activity"
)

// ErrUnknownKind is reported for requests of an unsupported kind
var ErrUnknownKind = errors.New("unknown job kind")

// Request asks for one job. Only the fields of its kind are read.
type Request struct {
	ID         uuid.UUID
	Kind       Kind
	Path       string // FIT file for import-activity
	Title      string
	ActivityID int64 // find-segments-on-activity
	SegmentID  int64 // segment-created
}

// Response reports a finished job
type Response struct {
	ID         uuid.UUID
	Kind       Kind
	ActivityID int64
	SegmentID  int64
	Matches    int
	Saved      int
	Failures   int // pairs that could not be matched
	Err        error
}

// Importer imports decoded files
type Importer interface {
	ImportFile(ctx context.Context, path, title string) (*service.ImportResult, error)
}

// Scanner matches segments and activities
type Scanner interface {
	ScanSegment(ctx context.Context, segmentID int64) (*service.ScanResult, error)
	ScanActivity(ctx context.Context, activityID int64) (*service.ScanResult, error)
}

// Dispatcher executes requests one at a time in arrival order
type Dispatcher struct {
	importer  Importer
	scanner   Scanner
	requests  chan Request
	responses chan Response
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with buffered channels of size buffer
func NewDispatcher(importer Importer, scanner Scanner, buffer int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		importer:  importer,
		scanner:   scanner,
		requests:  make(chan Request, buffer),
		responses: make(chan Response, buffer),
		logger:    logger,
	}
}

// Submit queues a request and returns its job id. It blocks while the
// queue is full.
func (d *Dispatcher) Submit(ctx context.Context, req Request) (uuid.UUID, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	select {
	case d.requests <- req:
		return req.ID, nil
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	}
}

// Responses delivers one response per processed request
func (d *Dispatcher) Responses() <-chan Response {
	return d.responses
}

// Close stops accepting requests; Run returns once the queue is drained
func (d *Dispatcher) Close() {
	close(d.requests)
}

// Run processes requests until the queue is closed or ctx is done, then
// closes the response channel.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.responses)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-d.requests:
			if !ok {
				return nil
			}
			resp := d.handle(ctx, req)
			if resp.Err != nil {
				d.logger.Warn("job failed", zap.Stringer("job_id", resp.ID),
					zap.String("kind", string(resp.Kind)), zap.Error(resp.Err))
			}
			select {
			case d.responses <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID, Kind: req.Kind, ActivityID: req.ActivityID, SegmentID: req.SegmentID}

	var scan *service.ScanResult
	var err error
	switch req.Kind {
	case KindImportActivity:
		var imported *service.ImportResult
		imported, err = d.importer.ImportFile(ctx, req.Path, req.Title)
		if imported != nil {
			resp.ActivityID = imported.Activity.ID
			scan = imported.Scan
		}
	case KindSegmentCreated:
		scan, err = d.scanner.ScanSegment(ctx, req.SegmentID)
	case KindFindSegmentsOnActivity:
		scan, err = d.scanner.ScanActivity(ctx, req.ActivityID)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}

	if scan != nil {
		resp.Matches = scan.Matches
		resp.Saved = scan.Saved
		resp.Failures = len(scan.Errors)
	}
	resp.Err = err
	return resp
}

// FileImporter adapts an import service to file paths
type FileImporter struct {
	Service *service.ImportService
}

// ImportFile opens and imports a FIT file
func (f FileImporter) ImportFile(ctx context.Context, path, title string) (*service.ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	return f.Service.ImportFIT(ctx, file, title)
}
