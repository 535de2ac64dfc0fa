// Package merge runs server-side PDF merge jobs and tracks their lifecycle.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"tableflip.dev/exammerge/pkg/logging"
)

// Server is the subset of the API client that produces merged PDFs.
type Server interface {
	Merge(ctx context.Context, category string, grade int, school string) ([]byte, error)
	MergeAll(ctx context.Context, category string, grade int, school string) ([]byte, error)
	MergeFinal(ctx context.Context, grade int, school string) ([]byte, error)
}

type statusCoder interface {
	HTTPStatusCode() int
}

// payloadError marks a 2xx response whose body is not a usable PDF.
type payloadError struct {
	err error
}

func (e *payloadError) Error() string { return "invalid pdf payload: " + e.err.Error() }
func (e *payloadError) Unwrap() error { return e.err }

// PageCounter validates a payload and returns its page count.
type PageCounter func(body []byte) (int, error)

// CountPages reads body with pdfcpu.
func CountPages(body []byte) (int, error) {
	if len(body) == 0 {
		return 0, errors.New("empty body")
	}
	return pdfapi.PageCount(bytes.NewReader(body), nil)
}

// Runner starts merge jobs. Each job runs on its own goroutine with its own
// progress ticker; jobs never wait on each other.
type Runner struct {
	server    Server
	log       *logging.Logger
	interval  time.Duration
	tickRate  time.Duration
	datestamp bool
	now       func() time.Time
	pages     PageCounter
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithInterval sets how long the progress estimate takes to reach its cap.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithTickRate sets how often progress snapshots are published.
func WithTickRate(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.tickRate = d
		}
	}
}

// WithDatestamp toggles the trailing date in download filenames.
func WithDatestamp(on bool) Option {
	return func(r *Runner) { r.datestamp = on }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithPageCounter replaces the pdfcpu payload check.
func WithPageCounter(pc PageCounter) Option {
	return func(r *Runner) {
		if pc != nil {
			r.pages = pc
		}
	}
}

// NewRunner builds a runner on server.
func NewRunner(server Server, opts ...Option) *Runner {
	r := &Runner{
		server:    server,
		log:       logging.Nop(),
		interval:  DefaultInterval,
		tickRate:  defaultTickRate,
		datestamp: true,
		now:       time.Now,
		pages:     CountPages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle observes one job.
type Handle struct {
	job     Job
	updates chan Job
	done    chan struct{}
	result  Result
}

// Job returns the snapshot taken when the job was created.
func (h *Handle) Job() Job { return h.job }

// Updates streams snapshots. Intermediate progress snapshots are dropped when
// the reader falls behind; state changes are always delivered, newest last.
// The channel is closed after the terminal snapshot.
func (h *Handle) Updates() <-chan Job { return h.updates }

// Done is closed once the job is terminal.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result blocks until the job is terminal.
func (h *Handle) Result() Result {
	<-h.done
	return h.result
}

// Wait is Result bounded by ctx.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// publish sends j. Progress snapshots are dropped when the buffer is full;
// state changes evict the oldest buffered snapshot instead.
func (h *Handle) publish(j Job, state bool) {
	select {
	case h.updates <- j:
		return
	default:
	}
	if !state {
		return
	}
	select {
	case <-h.updates:
	default:
	}
	select {
	case h.updates <- j:
	default:
	}
}

// Start creates a pending job for req and sends it. The returned handle is
// live immediately.
func (r *Runner) Start(ctx context.Context, req Request) *Handle {
	if ctx == nil {
		ctx = context.Background()
	}
	h := &Handle{
		job: Job{
			ID:      uuid.New(),
			Request: req,
			State:   StatePending,
		},
		updates: make(chan Job, 16),
		done:    make(chan struct{}),
	}
	go r.run(ctx, h)
	return h
}

type response struct {
	body []byte
	err  error
}

func (r *Runner) run(ctx context.Context, h *Handle) {
	job := h.job
	log := r.log.With("job", job.ID.String(), "slot", job.Request.Label(), "kind", job.Request.Kind.String())

	if err := job.Request.Validate(); err != nil {
		r.finish(h, job, response{err: err}, log)
		return
	}

	job.State = StateRunning
	job.StartedAt = r.now()
	h.publish(job, true)
	log.Info("merge started")

	responses := make(chan response, 1)
	go func(req Request) {
		body, err := r.send(ctx, req)
		responses <- response{body: body, err: err}
	}(job.Request)

	est := NewEstimator(job.StartedAt, r.interval)
	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()
	tick := ticker.C
	for {
		select {
		case <-tick:
			now := r.now()
			if p := est.At(now); p > job.Progress {
				job.Progress = p
				h.publish(job, false)
			}
			// the estimate holds at its cap until the response arrives
			if est.Exhausted(now) {
				ticker.Stop()
				tick = nil
				log.Debug("progress estimate exhausted", "progress", job.Progress)
			}
		case resp := <-responses:
			est.Complete()
			job.Progress = est.At(r.now())
			r.finish(h, job, resp, log)
			return
		}
	}
}

func (r *Runner) send(ctx context.Context, req Request) ([]byte, error) {
	switch req.Kind {
	case KindAll:
		return r.server.MergeAll(ctx, string(req.Category), req.Grade, req.School)
	case KindFinal:
		return r.server.MergeFinal(ctx, req.Grade, req.School)
	default:
		return r.server.Merge(ctx, string(req.Category), req.Grade, req.School)
	}
}

func (r *Runner) finish(h *Handle, job Job, resp response, log *logging.Logger) {
	job.FinishedAt = r.now()
	res := Result{}

	err := resp.err
	var download *Download
	if err == nil {
		pages, perr := r.pages(resp.body)
		switch {
		case perr != nil:
			err = &payloadError{err: perr}
		case pages <= 0:
			err = &payloadError{err: errors.New("no pages")}
		default:
			download = &Download{
				Filename: Filename(job.Request, job.FinishedAt, r.datestamp),
				Body:     resp.body,
				Pages:    pages,
			}
		}
	}

	if err != nil {
		job.State = StateFailed
		job.Err = classify(err)
		log.Warn("merge failed", "error", job.Err)
	} else {
		job.State = StateSuccess
		job.Progress = 1
		log.Info("merge succeeded", "file", download.Filename, "pages", download.Pages, "bytes", len(download.Body))
	}

	res.Job = job
	res.Download = download
	h.result = res
	h.publish(job, true)
	close(h.updates)
	close(h.done)
}

// classify maps a transport failure onto the two user-facing failure kinds.
func classify(err error) error {
	var sc statusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrMaterialNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrMergeGeneration, err)
}
