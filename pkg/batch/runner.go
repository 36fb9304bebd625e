// Package batch fans independent generation jobs out concurrently,
// isolates per-job failures, and aggregates a deterministic report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

var (
	// ErrInvalidRequest covers caller-input shape errors; no jobs run.
	ErrInvalidRequest = errors.New("invalid batch request")
	// ErrOutputDir indicates the output directory could not be created;
	// no jobs run.
	ErrOutputDir = errors.New("output directory error")
)

// Job is one unit of work.
type Job struct {
	Label   string
	Variant string
	Sizes   []int
}

// Request is the top-level batch input. Exactly one of Labels and Jobs
// must be supplied; Variant and Sizes are defaults inherited by jobs
// that do not set their own.
type Request struct {
	Labels    []string
	Jobs      []Job
	Variant   string
	Sizes     []int
	OutputDir string
}

// Status is a job's terminal state.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// detailLimit bounds the failure message shown in the report; the full
// error stays on the outcome.
const detailLimit = 100

// Outcome is one job's result. Index is the 1-based submission position.
type Outcome struct {
	Index      int
	Label      string
	Variant    string
	OutputPath string
	Status     Status
	Detail     string
	Err        error
}

// Report aggregates all outcomes in submission order.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	OutputDir string
	Outcomes  []Outcome
}

// Generator is the single-item collaborator the runner fans out to.
type Generator interface {
	Generate(ctx context.Context, job Job, outputPath string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, job Job, outputPath string) (string, error)

// Generate calls the wrapped function.
func (f GeneratorFunc) Generate(ctx context.Context, job Job, outputPath string) (string, error) {
	return f(ctx, job, outputPath)
}

// Runner executes batches against a Generator.
type Runner struct {
	gen   Generator
	fs    afero.Fs
	limit int
}

// Option configures a Runner.
type Option func(*Runner)

// WithFs overrides the filesystem used for output directory setup.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) { r.fs = fs }
}

// WithConcurrency caps how many jobs run at once. Zero or negative
// means unbounded, the historical behavior.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.limit = n }
}

// NewRunner builds a Runner for the given collaborator.
func NewRunner(gen Generator, opts ...Option) *Runner {
	r := &Runner{gen: gen, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates the request, materializes jobs, executes them
// concurrently, and returns a report ordered by submission index.
// Per-job failures never fail the call; only pre-flight errors do.
func (r *Runner) Run(ctx context.Context, req Request) (Report, error) {
	jobs, err := materialize(req)
	if err != nil {
		return Report{}, err
	}

	if err := r.fs.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	outcomes := make([]Outcome, len(jobs))

	var sem chan struct{}
	if r.limit > 0 {
		sem = make(chan struct{}, r.limit)
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			outcomes[i] = r.runOne(ctx, i+1, job, req.OutputDir)
		}(i, job)
	}
	wg.Wait()

	report := Report{
		Total:     len(jobs),
		OutputDir: req.OutputDir,
		Outcomes:  outcomes,
	}
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func materialize(req Request) ([]Job, error) {
	hasLabels := len(req.Labels) > 0
	hasJobs := len(req.Jobs) > 0

	if !hasLabels && !hasJobs {
		return nil, fmt.Errorf("%w: must provide either labels or jobs", ErrInvalidRequest)
	}
	if hasLabels && hasJobs {
		return nil, fmt.Errorf("%w: provide either labels or jobs, not both", ErrInvalidRequest)
	}

	var jobs []Job
	if hasLabels {
		jobs = make([]Job, 0, len(req.Labels))
		for _, label := range req.Labels {
			jobs = append(jobs, Job{Label: label, Variant: req.Variant, Sizes: req.Sizes})
		}
	} else {
		jobs = make([]Job, 0, len(req.Jobs))
		for _, job := range req.Jobs {
			if job.Variant == "" {
				job.Variant = req.Variant
			}
			if len(job.Sizes) == 0 {
				job.Sizes = req.Sizes
			}
			jobs = append(jobs, job)
		}
	}

	for i, job := range jobs {
		if strings.TrimSpace(job.Label) == "" {
			return nil, fmt.Errorf("%w: job %d has an empty label", ErrInvalidRequest, i+1)
		}
	}
	return jobs, nil
}

func (r *Runner) runOne(ctx context.Context, index int, job Job, outputDir string) Outcome {
	outputPath := filepath.Join(outputDir, OutputName(index, job.Label))
	outcome := Outcome{
		Index:      index,
		Label:      job.Label,
		Variant:    job.Variant,
		OutputPath: outputPath,
	}

	detail, err := r.gen.Generate(ctx, job, outputPath)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Detail = truncate(err.Error(), detailLimit)
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.Detail = detail
	return outcome
}

// OutputName derives the collision-free file stem for a job: sanitized
// lowercase label, spaces to underscores, capped at 50 runes, prefixed
// with the zero-padded 1-based index. The prefix keeps identical or
// empty-after-sanitization labels from overwriting each other.
func OutputName(index int, label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	safe := strings.ReplaceAll(b.String(), " ", "_")
	if len(safe) > 50 {
		safe = safe[:50]
	}
	return fmt.Sprintf("%03d_%s", index, safe)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// Summary renders the report as plain text for tool responses.
func (rep Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch complete: %d/%d succeeded, %d failed\n", rep.Succeeded, rep.Total, rep.Failed)
	fmt.Fprintf(&b, "Output directory: %s\n", rep.OutputDir)
	for _, o := range rep.Outcomes {
		if o.Status == StatusSuccess {
			fmt.Fprintf(&b, "  [%03d] ok      %s -> %s\n", o.Index, o.Label, o.OutputPath)
			continue
		}
		fmt.Fprintf(&b, "  [%03d] failed  %s: %s\n", o.Index, o.Label, o.Detail)
	}
	return b.String()
}
