package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"manifest-reconciler/core/config"
	"manifest-reconciler/core/loader"
	"manifest-reconciler/core/logger"
	"manifest-reconciler/core/reconcile"
	"manifest-reconciler/core/storage"
	"manifest-reconciler/feature/manifest"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the reconcile commands
	masterPath  string
	workingPath string
	appID       string
	outPath     string
	formatName  string
	patchesPath string
	modeName    string
	legacyAudit bool
	workers     int
	topRows     int
	yesConfirm  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report missing, unique and changed content per header",
	Long: `Compare every working header with its master tree and report:
  - missing_content: present in master, absent from the header
  - unique_content:  present only in the header
  - text_diff:       scalars that differ

Examples:
  # Audit to stdout, console summary on stderr
  manifest-reconciler audit --master master.json --working working.json

  # Two-category layout as YAML in S3
  manifest-reconciler audit --master s3://manifests/master.json --working working.json \
    --legacy --out s3://manifests/audit.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, reconcile.ModeAudit)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fold header-only content into master",
	Long: `Build one merged tree per header: master plus everything only the header
has. Master wins every scalar conflict. ChangeMe placeholders become --app-id
and PATH placeholders become the header's analytics prefix.

Examples:
  manifest-reconciler merge --master master.json --working working.json --app-id app42 --out merged.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, reconcile.ModeMerge)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply master's remove, update and override instructions",
	Long: `Apply the instruction sections of master to every working header:
removals first, then additions (never overwriting), then feature overrides.

Examples:
  # Write the result over the working manifest (asks for confirmation)
  manifest-reconciler update --master master.json --working working.json --out working.json

  # Non-interactive, with per-header merge patches
  manifest-reconciler update --master master.json --working working.json \
    --out working.json --patches patches.json --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd, reconcile.ModeUpdate)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reconciler in the mode given by --mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := reconcile.ParseMode(modeName)
		if err != nil {
			return err
		}
		return runReconcile(cmd, mode)
	},
}

func init() {
	for _, c := range []*cobra.Command{auditCmd, mergeCmd, updateCmd, runCmd} {
		addReconcileFlags(c)
		RootCmd.AddCommand(c)
	}
	runCmd.Flags().StringVar(&modeName, "mode", "", "Mode to run: audit, merge or update")
	_ = runCmd.MarkFlagRequired("mode")
}

func addReconcileFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&masterPath, "master", "", "Master manifest: file, '-' for stdin or s3://bucket/key")
	f.StringVar(&workingPath, "working", "", "Working manifest: file, '-' for stdin or s3://bucket/key")
	f.StringVar(&appID, "app-id", "", "App id replacing ChangeMe placeholders (merge)")
	f.StringVar(&outPath, "out", loader.StdIO, "Output location; empty skips writing")
	f.StringVar(&formatName, "format", "", "Output format: json or yaml (default from --out extension)")
	f.StringVar(&patchesPath, "patches", "", "Write per-header JSON merge patches to this location (update)")
	f.BoolVar(&legacyAudit, "legacy", false, "Write audits as diff_master/diff_app")
	f.IntVar(&workers, "workers", 0, "Headers processed in parallel (default from RECONCILE_WORKERS)")
	f.IntVar(&topRows, "top", 10, "Rows shown per console summary; 0 shows all")
	f.BoolVar(&yesConfirm, "yes", false, "Auto-confirm overwriting existing output (non-interactive)")
	_ = c.MarkFlagRequired("master")
	_ = c.MarkFlagRequired("working")
}

func runReconcile(cmd *cobra.Command, mode reconcile.Mode) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithRunID(l, uuid.NewString())
	defer func() { _ = l.Sync() }()

	settings := cfg.Reconcile
	if cmd.Flags().Changed("workers") {
		settings.Workers = workers
	}
	rules, err := settings.Build()
	if err != nil {
		return fmt.Errorf("invalid reconcile config: %w", err)
	}

	var format loader.Format
	if formatName != "" {
		if format, err = loader.ParseFormat(formatName); err != nil {
			return err
		}
	}

	var client storage.Client
	if usesObjectStorage(masterPath, workingPath, outPath, patchesPath) {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	svc := manifest.NewService(
		loader.New(client, cfg.Storage.Bucket),
		reconcile.NewEngine(rules, l),
		l,
	)

	req := manifest.Request{
		Mode:       mode,
		Master:     masterPath,
		Working:    workingPath,
		AppID:      appID,
		Out:        outPath,
		Format:     format,
		Legacy:     legacyAudit,
		PatchesOut: patchesPath,
	}

	needsConfirm, err := svc.NeedsConfirmation(ctx, req)
	if err != nil {
		return err
	}
	if needsConfirm && !confirmOverwrite(cmd.InOrStdin(), cmd.ErrOrStderr(), req.Out) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Starting reconciliation", zap.String("mode", string(mode)), zap.Int("workers", rules.Workers))
	outcome, err := svc.Execute(ctx, req)
	if err != nil {
		return err
	}

	return manifest.NewReporter(cmd.ErrOrStderr(), topRows).Render(cmd.ErrOrStderr(), outcome.Result)
}

// usesObjectStorage reports whether any location needs the S3 client.
func usesObjectStorage(locations ...string) bool {
	for _, loc := range locations {
		if _, _, ok := storage.ParseURI(loc); ok {
			return true
		}
	}
	return false
}

// confirmOverwrite prompts the user for confirmation or uses --yes flag.
func confirmOverwrite(in io.Reader, out io.Writer, location string) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprintf(out, "\n⚠️  %s already exists. Type 'yes' to overwrite it: ", location)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
