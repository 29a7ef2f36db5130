package reconcile

import (
	"context"
	"fmt"
	"runtime"

	"manifest-reconciler/core/tree"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs the reconcile modes over whole manifests. A manifest maps
// header names to header roots; master may also hold the remove, update
// and override instruction sections.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the rules the engine applies.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run dispatches to the operation selected by mode.
func (e *Engine) Run(ctx context.Context, mode Mode, master, working *tree.Node, appID string) (*Result, error) {
	res := &Result{Mode: mode}
	var err error
	switch mode {
	case ModeAudit:
		res.Audit, err = e.Audit(ctx, master, working)
	case ModeMerge:
		res.Merge, err = e.Merge(ctx, master, working, appID)
	case ModeUpdate:
		res.Update, err = e.Update(ctx, master, working)
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// analysis is the diff and prefix of one header.
type analysis struct {
	diff   HeaderDiff
	prefix string
}

// Audit diffs every selected header against its master root.
func (e *Engine) Audit(ctx context.Context, master, working *tree.Node) (*AuditReport, error) {
	headers := SelectHeaders(e.cfg, working)
	results := make([]analysis, len(headers))

	err := e.forEach(ctx, headers, func(i int, header string) error {
		results[i] = e.analyze(master, working, header)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &AuditReport{
		Headers:         headers,
		MissingContent:  make(map[string][]DiffEntry, len(headers)),
		UniqueContent:   make(map[string][]DiffEntry, len(headers)),
		TextDiff:        make(map[string][]TextDiffEntry, len(headers)),
		DiffCountMaster: make(map[string]int, len(headers)),
		DiffCountApp:    make(map[string]int, len(headers)),
		Prefixes:        make(map[string]string),
	}
	diffs := make([]HeaderDiff, len(results))
	for i, r := range results {
		h := headers[i]
		diffs[i] = r.diff
		report.MissingContent[h] = r.diff.Missing
		report.UniqueContent[h] = r.diff.Unique
		report.TextDiff[h] = r.diff.Text
		report.DiffCountMaster[h] = len(r.diff.Missing)
		report.DiffCountApp[h] = len(r.diff.Unique)
		if r.prefix != "" {
			report.Prefixes[h] = r.prefix
		}
	}

	m := e.cfg.Matcher()
	report.Summary = Summarize(m, headers, report.MissingContent)
	report.UniqueSummary = Summarize(m, headers, report.UniqueContent)
	report.KeyLabelSummary = SummarizeLabels(diffs)

	return report, nil
}

// Merge compiles every selected header from master plus its header-only
// content and substitutes placeholders.
func (e *Engine) Merge(ctx context.Context, master, working *tree.Node, appID string) (*MergeReport, error) {
	headers := SelectHeaders(e.cfg, working)
	merged := make([]*tree.Node, len(headers))
	prefixes := make([]string, len(headers))
	subs := make([]Substitution, len(headers))

	if appID == "" {
		e.logger.Warn("no app id given, ChangeMe placeholders are kept")
	}

	err := e.forEach(ctx, headers, func(i int, header string) error {
		a := e.analyze(master, working, header)
		root, _ := MasterRoot(e.cfg, master, header)

		out, stats, conflicts := Merge(e.cfg, root, a.diff.Unique, Placeholders{AppID: appID, Prefix: a.prefix})
		if stats.Unresolved > 0 {
			e.logger.Warn("PATH placeholders left unresolved",
				zap.String("header", header),
				zap.Int("count", stats.Unresolved))
		}
		if conflicts > 0 {
			e.logger.Debug("header content kept out of merge by master",
				zap.String("header", header),
				zap.Int("count", conflicts))
		}

		merged[i], prefixes[i], subs[i] = out, a.prefix, stats
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &MergeReport{
		Manifest:      tree.NewObject(),
		Prefixes:      make(map[string]string),
		Substitutions: make(map[string]Substitution, len(headers)),
	}
	for i, h := range headers {
		report.Manifest.Set(h, merged[i])
		report.Substitutions[h] = subs[i]
		if prefixes[i] != "" {
			report.Prefixes[h] = prefixes[i]
		}
	}
	return report, nil
}

// Update applies master's instructions to every selected header.
func (e *Engine) Update(ctx context.Context, master, working *tree.Node) (*UpdateReport, error) {
	headers := SelectHeaders(e.cfg, working)
	updated := make([]*tree.Node, len(headers))
	stats := make([]UpdateStats, len(headers))

	err := e.forEach(ctx, headers, func(i int, header string) error {
		root, _ := working.Get(header)
		out, s, err := Update(e.cfg, master, header, root)
		if err != nil {
			return fmt.Errorf("header %s: %w", header, err)
		}
		e.logger.Debug("header updated",
			zap.String("header", header),
			zap.Int("removed", s.Removed),
			zap.Int("added", s.Added),
			zap.Int("overridden", s.Overridden),
			zap.Int("skipped", s.Skipped))

		updated[i], stats[i] = out, s
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{
		Manifest: tree.NewObject(),
		Headers:  headers,
		Stats:    make(map[string]UpdateStats, len(headers)),
	}
	for i, h := range headers {
		report.Manifest.Set(h, updated[i])
		report.Stats[h] = stats[i]
	}
	return report, nil
}

func (e *Engine) analyze(master, working *tree.Node, header string) analysis {
	app, _ := working.Get(header)
	root, ok := MasterRoot(e.cfg, master, header)
	if !ok {
		e.logger.Warn("no master tree for header, comparing against an empty tree",
			zap.String("header", header))
	}

	d := Diff(e.cfg, root, app)
	d.Header = header

	prefix, ok := ExtractPrefix(app)
	if !ok {
		e.logger.Warn("analytics prefix not found", zap.String("header", header))
	}

	e.logger.Debug("header diffed",
		zap.String("header", header),
		zap.Int("missing", len(d.Missing)),
		zap.Int("unique", len(d.Unique)),
		zap.Int("text", len(d.Text)))

	return analysis{diff: d, prefix: prefix}
}

// forEach runs fn for every header on a bounded worker group. Each call
// owns index i of the caller's result slices.
func (e *Engine) forEach(ctx context.Context, headers []string, fn func(i int, header string) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, header := range headers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i, header)
		})
	}
	return g.Wait()
}
