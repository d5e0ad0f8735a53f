package cli

import (
	"context"
	"fmt"
	"io"

	"ridelog/internal/worker"
)

// runJobs pushes requests through a dispatcher and reports each response
// as it arrives. It returns the number of failed jobs.
func (a *app) runJobs(ctx context.Context, out io.Writer, requests []worker.Request) (int, error) {
	importer, scanner, err := a.services()
	if err != nil {
		return 0, err
	}

	d := worker.NewDispatcher(worker.FileImporter{Service: importer}, scanner, len(requests), a.logger)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for _, req := range requests {
		if _, err := d.Submit(ctx, req); err != nil {
			d.Close()
			<-done
			return 0, err
		}
	}
	d.Close()

	var failed int
	i := 0
	for resp := range d.Responses() {
		if resp.Err != nil {
			failed++
			printError(out, "%s: %v", describe(requests[i]), resp.Err)
		} else {
			reportJob(out, requests[i], resp)
		}
		i++
	}
	if err := <-done; err != nil {
		return failed, err
	}
	return failed, nil
}

func describe(req worker.Request) string {
	switch req.Kind {
	case worker.KindImportActivity:
		return req.Path
	case worker.KindSegmentCreated:
		return fmt.Sprintf("segment %d", req.SegmentID)
	case worker.KindFindSegmentsOnActivity:
		return fmt.Sprintf("activity %d", req.ActivityID)
	}
	return string(req.Kind)
}

func reportJob(out io.Writer, req worker.Request, resp worker.Response) {
	line := fmt.Sprintf("%s: %d segment efforts saved", describe(req), resp.Saved)
	if req.Kind == worker.KindImportActivity {
		line = fmt.Sprintf("%s: imported as activity %d, %d segment efforts", req.Path, resp.ActivityID, resp.Saved)
	}
	if resp.Failures > 0 {
		line += fmt.Sprintf(" (%d pairs skipped)", resp.Failures)
	}
	fmt.Fprintln(out, line)
}
