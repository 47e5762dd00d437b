package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/spf13/cobra"
)

func newDreamCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dream",
		Aliases: []string{"dreams"},
		Short:   "Record and browse dreams",
	}
	cmd.AddCommand(
		newDreamAddCmd(r),
		newDreamListCmd(r),
		newDreamShowCmd(r),
		newDreamEditCmd(r),
		newDreamRemoveCmd(r),
		newDreamAudioCmd(r),
	)
	return cmd
}

// dreamFields are the flags shared by add and edit.
type dreamFields struct {
	date, title, text, dreamType, location, audio string
	emotions, characters, symbols                 string
	lucidity, sleep, duration                     int
}

func (f *dreamFields) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.date, "date", "", "dream date, YYYY-MM-DD (default today)")
	fl.StringVar(&f.title, "title", "", "title")
	fl.StringVar(&f.text, "text", "", "dream text (prompted when empty)")
	fl.StringVar(&f.dreamType, "type", "", "dream type, e.g. lucid or nightmare")
	fl.StringVar(&f.location, "location", "", "where the dream took place")
	fl.StringVar(&f.audio, "audio", "", "path of a local voice recording")
	fl.StringVar(&f.emotions, "emotions", "", "comma separated emotions")
	fl.StringVar(&f.characters, "characters", "", "comma separated characters")
	fl.StringVar(&f.symbols, "symbols", "", "comma separated symbols")
	fl.IntVar(&f.lucidity, "lucidity", 0, "lucidity 1-5")
	fl.IntVar(&f.sleep, "sleep", 0, "sleep quality 1-5")
	fl.IntVar(&f.duration, "duration", 0, "duration in minutes")
}

func newDreamAddCmd(r *runner) *cobra.Command {
	var f dreamFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a dream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			user, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			if f.text == "" {
				if f.text, err = GetMultiline(a.reader, "Describe your dream", a.out); err != nil {
					return err
				}
			}
			if f.date == "" {
				f.date = time.Now().Format(models.DateLayout)
			}

			in := models.DreamInput{
				UserID:        user.ID,
				DreamDate:     f.date,
				Title:         f.title,
				BodyText:      f.text,
				AudioFilePath: f.audio,
				DreamType:     f.dreamType,
				Location:      f.location,
				EmotionTags:   splitList(f.emotions),
				Characters:    splitList(f.characters),
				Symbols:       splitList(f.symbols),
			}
			fl := cmd.Flags()
			if fl.Changed("lucidity") {
				in.LucidityLevel = &f.lucidity
			}
			if fl.Changed("sleep") {
				in.SleepQuality = &f.sleep
			}
			if fl.Changed("duration") {
				in.DreamDuration = &f.duration
			}

			d, err := a.dreamStore.Create(ctx, in)
			if err != nil {
				return err
			}
			a.patterns.Invalidate()
			fmt.Fprintf(a.out, "Saved dream %s [%s]\n", d.ID, syncBadge(d.IsSynced, d.SyncError))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDreamEditCmd(r *runner) *cobra.Command {
	var f dreamFields
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			var p models.DreamPatch
			fl := cmd.Flags()
			str := func(name string, v string) *string {
				if fl.Changed(name) {
					return &v
				}
				return nil
			}
			list := func(name string, v string) *[]string {
				if fl.Changed(name) {
					l := splitList(v)
					return &l
				}
				return nil
			}
			num := func(name string, v int) *int {
				if fl.Changed(name) {
					return &v
				}
				return nil
			}
			p.DreamDate = str("date", f.date)
			p.Title = str("title", f.title)
			p.BodyText = str("text", f.text)
			p.DreamType = str("type", f.dreamType)
			p.Location = str("location", f.location)
			p.AudioFilePath = str("audio", f.audio)
			p.EmotionTags = list("emotions", f.emotions)
			p.Characters = list("characters", f.characters)
			p.Symbols = list("symbols", f.symbols)
			p.LucidityLevel = num("lucidity", f.lucidity)
			p.SleepQuality = num("sleep", f.sleep)
			p.DreamDuration = num("duration", f.duration)

			d, err := a.dreamStore.Update(ctx, args[0], p)
			if err != nil {
				return err
			}
			a.patterns.Invalidate()
			fmt.Fprintf(a.out, "Updated dream %s [%s]\n", d.ID, syncBadge(d.IsSynced, d.SyncError))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDreamListCmd(r *runner) *cobra.Command {
	var (
		remote        bool
		f             models.DreamFilter
		emotions      string
		page, perPage int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List dreams on this device, or on the server with --remote",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if remote {
				f.EmotionFilter = splitList(emotions)
				f.Limit = perPage
				f.Skip = (max(page, 1) - 1) * perPage
				list, err := a.dreams.List(ctx, f)
				if err != nil {
					return err
				}
				printServerDreams(a.out, list)
				return nil
			}

			if err := a.dreamStore.Load(ctx); err != nil {
				return err
			}
			printLocalDreams(a.out, a.dreamStore.Get().State.Dreams)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&remote, "remote", false, "list the server copy")
	fl.StringVar(&f.StartDate, "from", "", "start date (remote)")
	fl.StringVar(&f.EndDate, "to", "", "end date (remote)")
	fl.StringVar(&f.DreamType, "type", "", "dream type (remote)")
	fl.StringVar(&emotions, "emotions", "", "comma separated emotions (remote)")
	fl.IntVar(&page, "page", 1, "page number (remote)")
	fl.IntVar(&perPage, "per-page", 20, "page size (remote)")
	return cmd
}

func printLocalDreams(w io.Writer, dreams []models.Dream) {
	if len(dreams) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No dreams yet."))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tSTATUS")
	for _, d := range dreams {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.DreamDate, titleOr(d.Title), syncBadge(d.IsSynced, d.SyncError))
	}
	tw.Flush()
}

func printServerDreams(w io.Writer, list *models.DreamList) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTITLE\tANALYSIS")
	for _, d := range list.Dreams {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.DreamDate, titleOr(d.Title), d.AnalysisStatus)
	}
	tw.Flush()
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d, %d total", list.Page, list.TotalCount)))
}

func titleOr(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}

func newDreamShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			d, err := a.dreamStore.Select(ctx, args[0])
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("dream %s: %w", args[0], common.ErrNotFound)
			}
			printDream(a.out, d)
			return nil
		},
	}
}

func printDream(w io.Writer, d *models.Dream) {
	fmt.Fprintln(w, titleStyle.Render(titleOr(d.Title)))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", mutedStyle.Render(k), v)
		}
	}
	num := func(v *int) string {
		if v == nil {
			return ""
		}
		return fmt.Sprint(*v)
	}
	row("id", d.ID)
	row("date", d.DreamDate)
	row("type", d.DreamType)
	row("location", d.Location)
	row("lucidity", num(d.LucidityLevel))
	row("sleep", num(d.SleepQuality))
	row("duration", num(d.DreamDuration))
	row("emotions", strings.Join(d.EmotionTags, ", "))
	row("characters", strings.Join(d.Characters, ", "))
	row("symbols", strings.Join(d.Symbols, ", "))
	row("audio", d.AudioFilePath)
	row("status", syncBadge(d.IsSynced, d.SyncError))
	row("sync error", d.SyncError)
	tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, d.BodyText)
}

func newDreamRemoveCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a dream",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			if err := a.dreamStore.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.patterns.Invalidate()
			fmt.Fprintf(a.out, "Deleted dream %s\n", args[0])
			return nil
		},
	}
}

func newDreamAudioCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "audio <file>",
		Short: "Upload a voice recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			up, err := a.dreams.UploadAudio(ctx, args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Uploaded %d bytes to %s\n", up.FileSize, up.AudioFilePath)
			return nil
		},
	}
}
