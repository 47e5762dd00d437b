package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dmitrijs2005/dreamtracer/internal/client/backup"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/spf13/cobra"
)

func newPlanCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Subscription tier and quota usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			plan := a.manager.GetUserPlan(ctx)
			header := titleStyle.Render(string(plan.Plan) + " plan")
			if plan.Unknown {
				header += " " + warnStyle.Render("(server unreachable, showing defaults)")
			}
			fmt.Fprintln(a.out, header)

			limits := models.DefaultLimits().For(plan.Plan)
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FEATURE\tUSED\tLIMIT")
			for _, f := range []models.Feature{models.FeatureAIAnalyses, models.FeatureVisualizations, models.FeatureImageUploads, models.FeatureCommunityPosts} {
				limit := "unlimited"
				if l := limits.Limit(f); l != models.Unlimited {
					limit = fmt.Sprint(l)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", f, plan.FeaturesUsed.Used(f), limit)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "share text limit: %d characters\n", limits.CommunityTextLimit)
			if !plan.Unknown {
				fmt.Fprintln(a.out, mutedStyle.Render("resets "+plan.MonthlyResetDate.Format(models.DateLayout)))
			}
			return nil
		},
	}
}

func newUsageCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Local storage used by this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			u, err := a.manager.GetStorageUsage(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "dreams\t%d bytes\n", u.Dreams)
			fmt.Fprintf(tw, "sync status\t%d bytes\n", u.SyncStatuses)
			fmt.Fprintf(tw, "total\t%d bytes\n", u.Total)
			return tw.Flush()
		},
	}
}

func newExportCmd(r *runner) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all local data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			data, err := a.manager.ExportData(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = a.out.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Load an export produced by `export`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(a.reader)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			if err := a.manager.ImportData(cmd.Context(), data); err != nil {
				return err
			}
			a.patterns.Invalidate()
			fmt.Fprintln(a.out, goodStyle.Render("Import complete."))
			return nil
		},
	}
}

func newBackupCmd(r *runner) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted backups in object storage",
	}
	cmd.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "encryption passphrase (prompted when empty)")

	// service is built on demand so commands that never touch backups do
	// not need object storage.
	service := func(cmd *cobra.Command) (*backup.Service, error) {
		a := r.app
		if _, err := a.requireUser(cmd.Context()); err != nil {
			return nil, err
		}
		store, err := a.objectStore(cmd.Context(), a.config)
		if err != nil {
			return nil, err
		}
		return backup.NewService(store, a.manager, a.auth, a.logger), nil
	}
	secret := func() (string, error) {
		if passphrase != "" {
			return passphrase, nil
		}
		return GetSecret(r.app.in, r.app.reader, "Backup passphrase", r.app.out)
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Encrypt local data and upload it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			pass, err := secret()
			if err != nil {
				return err
			}
			key, err := svc.Push(cmd.Context(), pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.app.out, "Backup stored as %s\n", key)
			return nil
		},
	}

	pull := &cobra.Command{
		Use:   "pull <key>",
		Short: "Download, decrypt and import a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			pass, err := secret()
			if err != nil {
				return err
			}
			if err := svc.Pull(cmd.Context(), args[0], pass); err != nil {
				return err
			}
			r.app.patterns.Invalidate()
			fmt.Fprintln(r.app.out, goodStyle.Render("Backup restored."))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			keys, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(r.app.out, mutedStyle.Render("No backups yet."))
			}
			for _, k := range keys {
				fmt.Fprintln(r.app.out, k)
			}
			return nil
		},
	}

	cmd.AddCommand(push, pull, list)
	return cmd
}
