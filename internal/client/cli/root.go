package cli

import (
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/dreamtracer/internal/buildinfo"
	"github.com/dmitrijs2005/dreamtracer/internal/client/backup"
	"github.com/dmitrijs2005/dreamtracer/internal/client/config"
	"github.com/spf13/cobra"
)

// Options are the process-level inputs of the CLI.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// ObjectStore builds the backup target. Nil means S3 configured from
	// the client settings.
	ObjectStore func(ctx context.Context, cfg *config.Config) (backup.ObjectStore, error)
}

func (o Options) withDefaults() Options {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.ObjectStore == nil {
		o.ObjectStore = s3ObjectStore
	}
	return o
}

func s3ObjectStore(ctx context.Context, cfg *config.Config) (backup.ObjectStore, error) {
	return backup.NewS3Store(ctx, backup.S3Options{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
}

// runner owns the App for one process. The shell builds a fresh command
// tree per line against the same runner.
type runner struct {
	opts        Options
	args        []string
	app         *App
	interactive bool
}

func (r *runner) setup(ctx context.Context) error {
	if r.app != nil {
		return nil
	}
	cfg, err := config.LoadConfig(r.args)
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, r.opts)
	if err != nil {
		return err
	}
	r.app = app
	return nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

// Execute runs the CLI with args (without the program name).
func Execute(ctx context.Context, args []string, opts Options) error {
	r := &runner{opts: opts.withDefaults(), args: args}
	defer r.close()

	root := newRootCmd(r)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(r *runner) *cobra.Command {
	root := &cobra.Command{
		Use:           "dreamtracer",
		Short:         "Offline-first dream journal",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.setup(cmd.Context())
		},
	}
	root.SetIn(r.opts.In)
	root.SetOut(r.opts.Out)
	root.SetErr(r.opts.Err)

	// Values are read by config.LoadConfig from the raw arguments; cobra
	// only needs to accept them.
	pf := root.PersistentFlags()
	pf.StringP(config.FlagAPI, config.FlagAPIShort, "", "backend API base URL")
	pf.String(config.FlagDB, "", "local database path")
	pf.String(config.FlagLogLevel, "", "log level (debug, info, warn, error)")
	pf.String(config.FlagLogFormat, "", "log format (text, json)")
	pf.StringP(config.FlagConfig, "c", "", "JSON config file")
	pf.String(config.FlagEnvFile, "", "dotenv file")

	root.AddCommand(
		newLoginCmd(r),
		newLogoutCmd(r),
		newDreamCmd(r),
		newSyncCmd(r),
		newPendingCmd(r),
		newShareCmd(r),
		newFeedCmd(r),
		newAnalyzeCmd(r),
		newVisualizeCmd(r),
		newPatternsCmd(r),
		newNetworkCmd(r),
		newInsightsCmd(r),
		newPlanCmd(r),
		newUsageCmd(r),
		newExportCmd(r),
		newImportCmd(r),
		newBackupCmd(r),
	)
	if !r.interactive {
		root.AddCommand(newShellCmd(r))
	}
	return root
}
