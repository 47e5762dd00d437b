package cli

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

func newSyncCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending dreams to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			report, err := a.dreamStore.Sync(ctx)
			if err != nil {
				return err
			}
			if report.Attempted == 0 {
				fmt.Fprintln(a.out, goodStyle.Render("Everything is synced."))
				return nil
			}

			fmt.Fprintf(a.out, "Synced %d of %d dreams.\n", report.Synced, report.Attempted)
			ids := make([]string, 0, len(report.Failed))
			for id := range report.Failed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(a.out, "  %s %s: %s\n", badStyle.Render("failed"), id, report.Failed[id])
			}
			return nil
		},
	}
}

func newPendingCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List dreams waiting for sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			n, err := a.dreamStore.RefreshPending(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d pending\n", n)
			if n > 0 {
				printLocalDreams(a.out, a.manager.GetPendingSyncDreams(ctx))
			}
			return nil
		},
	}
}

func newShareCmd(r *runner) *cobra.Command {
	var text, image string
	cmd := &cobra.Command{
		Use:   "share <dream-id>",
		Short: "Share a dream to the community feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if text == "" {
				t, err := GetMultiline(a.reader, "Text to share", a.out)
				if err != nil {
					return err
				}
				text = t
			}

			post, err := a.manager.ShareDreamToCommunity(ctx, args[0], text, image)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Shared as post %s (%d characters)\n", post.ID, utf8.RuneCountInString(post.SharedText))
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "text to share (prompted when empty)")
	cmd.Flags().StringVar(&image, "image", "", "image to attach")
	return cmd
}

func newFeedCmd(r *runner) *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the community feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			items, err := a.community.Posts(ctx, (max(page, 1)-1)*perPage, perPage)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("The feed is empty."))
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render(it.Title), mutedStyle.Render("by "+it.Author))
				fmt.Fprintln(a.out, it.Content)
				meta := fmt.Sprintf("%d likes, %d comments", it.Likes, it.Comments)
				if len(it.Tags) > 0 {
					meta += " | " + strings.Join(it.Tags, ", ")
				}
				fmt.Fprintln(a.out, mutedStyle.Render(meta))
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "posts per page")
	return cmd
}
