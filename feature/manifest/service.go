package manifest

import (
	"context"
	"encoding/json"
	"fmt"

	"manifest-reconciler/core/loader"
	"manifest-reconciler/core/reconcile"
	"manifest-reconciler/core/tree"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request describes one reconcile run.
type Request struct {
	// Mode selects audit, merge or update.
	Mode reconcile.Mode
	// Master and Working are the document locations (file, "-" or s3://).
	Master  string
	Working string
	// AppID replaces ChangeMe placeholders in merge mode.
	AppID string

	// Out receives the mode's output document. Empty skips writing.
	Out string
	// Format of Out. Empty picks it from the Out extension, defaulting to JSON.
	Format loader.Format
	// Legacy writes audits in the two-category layout.
	Legacy bool
	// PatchesOut receives the per-header merge patches of an update run.
	PatchesOut string
}

// Outcome is the result of Execute.
type Outcome struct {
	Result *reconcile.Result
	// Output is the document written to Request.Out.
	Output any
	// Patches maps header name to the JSON merge patch update applied to it.
	// Only set when Request.PatchesOut is given.
	Patches map[string]json.RawMessage
}

// Service runs reconciliations over loaded manifests.
type Service struct {
	loader *loader.Loader
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a new manifest service.
func NewService(l *loader.Loader, engine *reconcile.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader: l,
		engine: engine,
		logger: logger,
	}
}

// Load reads the master and working manifests concurrently.
func (s *Service) Load(ctx context.Context, masterLoc, workingLoc string) (master, working *tree.Node, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.loader.LoadManifest(ctx, masterLoc)
		if err != nil {
			return fmt.Errorf("load master: %w", err)
		}
		master = m
		return nil
	})
	g.Go(func() error {
		w, err := s.loader.LoadManifest(ctx, workingLoc)
		if err != nil {
			return fmt.Errorf("load working: %w", err)
		}
		working = w
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s.logger.Info("Manifests loaded",
		zap.String("master", masterLoc),
		zap.Int("master_headers", master.Len()),
		zap.String("working", workingLoc),
		zap.Int("working_headers", working.Len()),
	)
	return master, working, nil
}

// NeedsConfirmation reports whether running req would overwrite existing
// content that the caller should confirm first: the working manifest, or
// any existing output of an update run.
func (s *Service) NeedsConfirmation(ctx context.Context, req Request) (bool, error) {
	if req.Out == "" || req.Out == loader.StdIO {
		return false, nil
	}
	if req.Out != req.Working && req.Mode != reconcile.ModeUpdate {
		return false, nil
	}
	return s.loader.Exists(ctx, req.Out)
}

// Execute loads both manifests, runs the requested mode and writes the
// outputs named in req.
func (s *Service) Execute(ctx context.Context, req Request) (*Outcome, error) {
	master, working, err := s.Load(ctx, req.Master, req.Working)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Run(ctx, req.Mode, master, working, req.AppID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: res, Output: Output(res, req.Legacy)}

	if req.PatchesOut != "" {
		if res.Update == nil {
			return nil, fmt.Errorf("patches are only produced in %s mode", reconcile.ModeUpdate)
		}
		out.Patches, err = ChangePatches(working, res.Update)
		if err != nil {
			return nil, err
		}
	}

	if req.Out != "" {
		if err := s.Write(ctx, req.Out, req.Format, out.Output); err != nil {
			return nil, err
		}
		s.logger.Info("Output written", zap.String("location", req.Out), zap.String("mode", string(req.Mode)))
	}
	if req.PatchesOut != "" {
		if err := s.Write(ctx, req.PatchesOut, "", out.Patches); err != nil {
			return nil, err
		}
		s.logger.Info("Patches written", zap.String("location", req.PatchesOut), zap.Int("headers", len(out.Patches)))
	}

	return out, nil
}

// Write encodes v and stores it at location. An empty format is derived from
// the location.
func (s *Service) Write(ctx context.Context, location string, format loader.Format, v any) error {
	if format == "" {
		format = loader.FormatFor(location, nil)
	}
	data, err := loader.Encode(v, format)
	if err != nil {
		return err
	}
	return s.loader.Write(ctx, location, data)
}

// Output returns the document a result is written as.
func Output(res *reconcile.Result, legacy bool) any {
	switch {
	case res.Audit != nil && legacy:
		return res.Audit.Legacy()
	case res.Audit != nil:
		return res.Audit
	case res.Merge != nil:
		return res.Merge.Document()
	case res.Update != nil:
		return res.Update.Document()
	}
	return nil
}
