// Package batch turns a glob of organization inputs into credential
// documents, one concurrent task per input.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/credgrid/internal/config"
	"github.com/JonMunkholm/credgrid/internal/core"
	"github.com/JonMunkholm/credgrid/internal/logging"
	"github.com/JonMunkholm/credgrid/internal/render"
)

var (
	// ErrNoInputs is returned when the pattern matches no file.
	ErrNoInputs = errors.New("pattern matched no input files")

	// ErrOutputCollision marks an input whose output path was already
	// claimed by an earlier, different input.
	ErrOutputCollision = errors.New("output collision")

	// ErrDuplicateInput marks a match that resolves to the same descriptor
	// and roster as an earlier match, such as clube.json and clube.csv.
	ErrDuplicateInput = errors.New("input already matched")
)

// SurfaceFactory creates the drawing surface of one document.
type SurfaceFactory func(t render.Theme) render.Surface

// DefaultSurface draws to a PDF sized to the theme's page.
func DefaultSurface(t render.Theme) render.Surface {
	return render.NewPDFSurface(t.PageWidth, t.PageHeight)
}

// Option configures a Runner.
type Option func(*Runner)

// WithSurfaceFactory replaces the PDF surface, mainly for tests.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(r *Runner) { r.newSurface = f }
}

// WithLogger sets the logger used for run and document entries. Without
// it, entries go to the default logger tagged with the run id.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithQREncoder replaces the QR encoder handed to every document.
func WithQREncoder(q render.QREncoder) Option {
	return func(r *Runner) { r.qr = q }
}

// Runner generates credential documents for every input of a pattern.
// A Runner holds only read-only state and may serve several runs.
type Runner struct {
	cfg        config.Config
	catalog    render.Catalog
	newSurface SurfaceFactory
	qr         render.QREncoder
	logger     *slog.Logger
}

// NewRunner creates a Runner. The catalog must already be validated.
func NewRunner(cfg config.Config, catalog render.Catalog, opts ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		catalog:    catalog,
		newSurface: DefaultSurface,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// job is one planned input. Tasks only touch their own job.
type job struct {
	result *Result
	input  core.Input
}

// task does the work of one job once its input is resolved.
type task func(ctx context.Context, log *slog.Logger, j job) error

// Run generates one document per input matched by pattern.
//
// Every input gets a Result in match order. A failed input never stops
// the others; the returned error is reserved for problems that prevent
// the run itself (bad pattern, unknown layout).
func (r *Runner) Run(ctx context.Context, pattern string) (*Summary, error) {
	variant, err := r.catalog.Get(r.cfg.Render.Layout)
	if err != nil {
		return nil, err
	}

	return r.run(ctx, "gen", pattern, true, func(ctx context.Context, log *slog.Logger, j job) error {
		roster, ok, err := r.loadRoster(ctx, log, j)
		if err != nil || !ok {
			return err
		}
		return r.generate(ctx, log, variant, j.result, roster)
	})
}

// Validate loads and checks every input matched by pattern without
// rendering anything.
func (r *Runner) Validate(ctx context.Context, pattern string) (*Summary, error) {
	variant, err := r.catalog.Get(r.cfg.Render.Layout)
	if err != nil {
		return nil, err
	}

	return r.run(ctx, "val", pattern, false, func(ctx context.Context, log *slog.Logger, j job) error {
		roster, ok, err := r.loadRoster(ctx, log, j)
		if err != nil || !ok {
			return err
		}
		j.result.Pages = variant.Theme.Grid.Pages(roster.Len())
		log.Info("roster valid", "members", roster.Len(), "dropped", roster.Dropped(), "pages", j.result.Pages)
		return nil
	})
}

// run plans every match sequentially, then fans the jobs out.
// checkOutputs enables output path collision detection.
func (r *Runner) run(ctx context.Context, mode, pattern string, checkOutputs bool, do task) (*Summary, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputs, pattern)
	}

	summary := &Summary{
		RunID:   uuid.NewString(),
		Mode:    mode,
		Layout:  r.cfg.Render.Layout,
		Started: time.Now(),
		Results: make([]Result, len(matches)),
	}

	ctx = logging.WithRun(ctx, summary.RunID)
	if r.cfg.Batch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Batch.Timeout)
		defer cancel()
	}

	runLog := logging.WithFields(ctx, "mode", mode)
	if r.logger != nil {
		runLog = r.logger.With("run_id", summary.RunID, "mode", mode)
	}
	runLog.Info("run started", "pattern", pattern, "inputs", len(matches), "layout", summary.Layout)

	jobs := r.plan(matches, summary.Results, checkOutputs)
	limiter := NewLimiter(r.cfg.Batch.MaxConcurrent)

	// A plain Group: one failing input must not cancel its siblings.
	var g errgroup.Group
	for _, j := range jobs {
		if j.result.Status != "" {
			continue
		}
		g.Go(func() error {
			r.execute(ctx, runLog, limiter, j, do)
			return nil
		})
	}
	_ = g.Wait()

	summary.Finished = time.Now()
	summary.Peak = limiter.Status().Peak

	runLog.Info("run finished",
		"ok", summary.Count(StatusOK),
		"skipped", summary.Count(StatusSkipped),
		"failed", summary.Count(StatusFailed),
		"duration", summary.Duration(),
	)
	return summary, nil
}

// plan resolves each match in order. A match that resolves to an input
// already planned is skipped. Inputs that cannot be resolved, or whose
// output path a different earlier input already claimed, are marked failed.
// Neither reaches a task.
func (r *Runner) plan(matches []string, results []Result, checkOutputs bool) []job {
	seen := make(map[[2]string]string, len(matches))
	claimed := make(map[string]string, len(matches))
	jobs := make([]job, len(matches))

	for i, path := range matches {
		res := &results[i]
		*res = Result{JobID: uuid.NewString(), Input: path}
		jobs[i] = job{result: res}

		in, err := core.ResolveInput(path)
		if err != nil {
			res.fail(err)
			continue
		}
		jobs[i].input = in
		res.Org = in.Org.Name
		res.Output = r.outputPath(in)

		same := [2]string{absPath(in.Descriptor), absPath(in.Roster)}
		if first, dup := seen[same]; dup {
			res.Status = StatusSkipped
			res.Err = fmt.Errorf("%w: %s resolves to the same organization as %s", ErrDuplicateInput, path, first)
			continue
		}
		seen[same] = path

		if !checkOutputs {
			continue
		}
		key := absPath(res.Output)
		if first, taken := claimed[key]; taken {
			res.fail(fmt.Errorf("%w: %s is already written by %s", ErrOutputCollision, res.Output, first))
			continue
		}
		claimed[key] = path
	}
	return jobs
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// outputPath is the descriptor's outputFile, or the input's basename with
// a .pdf extension inside the output directory.
func (r *Runner) outputPath(in core.Input) string {
	if in.Org.OutputFile != "" {
		return in.Org.OutputFile
	}
	base := filepath.Base(in.Source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(r.cfg.Render.OutputDir, base+".pdf")
}

func (r *Runner) execute(ctx context.Context, runLog *slog.Logger, limiter *Limiter, j job, do task) {
	res := j.result
	log := runLog.With("job_id", res.JobID, "input", res.Input, "org", res.Org)
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if err := limiter.Acquire(ctx); err != nil {
		res.fail(err)
		log.Error("document not started", "error", err)
		return
	}
	defer limiter.Release()

	if err := do(ctx, log, j); err != nil {
		res.fail(err)
		log.Error("document failed", "error", err, "code", core.MapError(err).Code)
		return
	}
	if res.Status == "" {
		res.Status = StatusOK
	}
}

// loadRoster loads the job's roster. ok is false when the roster is empty
// and the job was marked skipped.
func (r *Runner) loadRoster(ctx context.Context, log *slog.Logger, j job) (*core.Roster, bool, error) {
	roster, err := core.NewLoader(r.cfg.Roster, log).LoadInput(ctx, j.input)
	if err != nil {
		return nil, false, err
	}

	res := j.result
	res.Members = roster.Len()
	res.Dropped = roster.Dropped()
	res.roster = roster

	if roster.Len() == 0 {
		res.Status = StatusSkipped
		res.Err = core.ErrEmptyRoster
		log.Warn("skipping organization with no members", "dropped", res.Dropped)
		return roster, false, nil
	}
	return roster, true, nil
}

func (r *Runner) generate(ctx context.Context, log *slog.Logger, v render.Variant, res *Result, roster *core.Roster) error {
	lay := v.New(render.Options{
		Codec:     core.NewCodec(r.cfg.Roster),
		Strict:    r.cfg.Roster.ValidateCourses,
		FontsDir:  r.cfg.Render.FontsDir,
		ImagesDir: r.cfg.Render.ImagesDir,
		QR:        r.qr,
		Logger:    log,
	})

	s := r.newSurface(v.Theme)
	if err := render.RenderDocument(ctx, lay, s, roster); err != nil {
		return err
	}
	if err := writeAtomic(res.Output, s); err != nil {
		return err
	}

	res.Pages = v.Theme.Grid.Pages(roster.Len())
	res.Status = StatusOK
	log.Info("document written", "output", res.Output, "members", res.Members, "pages", res.Pages, "dropped", res.Dropped)
	return nil
}

// writeAtomic writes the surface to a temp file next to path and renames
// it into place, so a failed write never leaves a partial document.
func writeAtomic(path string, s render.Surface) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := s.Output(tmp); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (r *Result) fail(err error) {
	r.Status = StatusFailed
	r.Err = err
}
