package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/insights"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/client/services"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(r *runner) *cobra.Command {
	var (
		wait     bool
		cached   bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "analyze <dream-id>",
		Short: "Request an AI interpretation of a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if cached {
				res, err := a.analysisStore.LoadAnalysis(ctx, args[0])
				if err != nil {
					return err
				}
				printAnalysis(a.out, res)
				return nil
			}

			task, err := a.manager.RequestDreamAnalysis(ctx, args[0])
			if err != nil {
				return err
			}
			if wait && !task.Done() {
				if task, err = a.analysis.PollTask(ctx, task.TaskID, interval); err != nil {
					return err
				}
			}

			switch {
			case task.Status == models.AnalysisFailed:
				return fmt.Errorf("analysis failed: %s", task.Error)
			case task.Result != nil:
				if err := a.manager.SaveAnalysisResult(ctx, args[0], *task.Result); err != nil {
					a.logger.Warn(ctx, "could not store analysis result", "error", err)
				}
				printAnalysis(a.out, task.Result)
			default:
				fmt.Fprintf(a.out, "Analysis queued as task %s (%s)\n", task.TaskID, task.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the analysis to finish")
	cmd.Flags().BoolVar(&cached, "show", false, "show the stored analysis without requesting a new one")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval with --wait")
	return cmd
}

func printAnalysis(w io.Writer, res *models.AnalysisResult) {
	fmt.Fprintln(w, titleStyle.Render("Summary"))
	fmt.Fprintln(w, res.SummaryText)
	if len(res.Keywords) > 0 {
		fmt.Fprintln(w, mutedStyle.Render("keywords: "+strings.Join(res.Keywords, ", ")))
	}
	if res.EmotionalFlowText != "" {
		fmt.Fprintln(w, titleStyle.Render("Emotional flow"))
		fmt.Fprintln(w, res.EmotionalFlowText)
	}
	if len(res.SymbolAnalysis) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Symbols"))
		names := make([]string, 0, len(res.SymbolAnalysis))
		for name := range res.SymbolAnalysis {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, res.SymbolAnalysis[name])
		}
	}
	if res.ReflectiveQuestion != "" {
		fmt.Fprintln(w, titleStyle.Render("Reflect"))
		fmt.Fprintln(w, res.ReflectiveQuestion)
	}
}

func newVisualizeCmd(r *runner) *cobra.Command {
	var (
		style      string
		listStyles bool
		history    bool
	)
	cmd := &cobra.Command{
		Use:   "visualize [dream-id]",
		Short: "Generate an image for a dream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()

			if listStyles {
				styles, err := a.visuals.Styles(ctx)
				if err != nil {
					return err
				}
				for _, s := range styles {
					fmt.Fprintf(a.out, "%-16s %s\n", s.Key, s.Name)
				}
				return nil
			}

			if len(args) == 0 {
				return errors.New("dream id required")
			}
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if history {
				list, err := a.visuals.ForDream(ctx, args[0])
				if err != nil {
					return err
				}
				for _, v := range list {
					fmt.Fprintf(a.out, "%s  %s  %s\n", v.ID, services.StyleName(v.ArtStyle), a.visuals.ImageURL(v.ImagePath))
				}
				return nil
			}

			v, err := a.manager.RequestDreamVisualization(ctx, args[0], style)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n%s\n", goodStyle.Render("Visualization ready"), services.StyleName(v.ArtStyle), a.visuals.ImageURL(v.ImagePath))
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "surreal", "art style")
	cmd.Flags().BoolVar(&listStyles, "styles", false, "list available art styles")
	cmd.Flags().BoolVar(&history, "list", false, "list existing visualizations of the dream")
	return cmd
}

func newPatternsCmd(r *runner) *cobra.Command {
	var (
		days  int
		local bool
	)
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Recurring themes and trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if !local {
				p, err := a.analysisStore.LoadServerPatterns(ctx, days)
				if err == nil {
					printServerPatterns(a.out, p)
					return nil
				}
				a.logger.Warn(ctx, "server patterns unavailable, computing locally", "error", err)
			}

			p, err := a.analysisStore.LoadLocalPatterns(ctx)
			if errors.Is(err, insights.ErrNoDreams) {
				fmt.Fprintln(a.out, mutedStyle.Render("Record a few dreams first."))
				return nil
			}
			if err != nil {
				return err
			}
			printLocalPatterns(a.out, p, a.analysisStore.Get().State.Prediction)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "period analyzed by the server")
	cmd.Flags().BoolVar(&local, "local", false, "compute from dreams on this device")
	return cmd
}

func printServerPatterns(w io.Writer, p *models.ServerPatterns) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Patterns"), mutedStyle.Render(fmt.Sprintf("(%s, %d dreams)", p.AnalysisPeriod, p.TotalDreams)))
	names := func(list []models.NamedCount) string {
		parts := make([]string, 0, len(list))
		for _, c := range list {
			parts = append(parts, fmt.Sprintf("%s (%d)", c.Name, c.Count))
		}
		return strings.Join(parts, ", ")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "emotions\t%s\n", names(p.Emotions))
	fmt.Fprintf(tw, "symbols\t%s\n", names(p.Symbols))
	fmt.Fprintf(tw, "characters\t%s\n", names(p.Characters))
	fmt.Fprintf(tw, "types\t%s\n", names(p.DreamTypes))
	fmt.Fprintf(tw, "lucidity\t%.1f\n", p.AverageLucidity)
	tw.Flush()
}

func printLocalPatterns(w io.Writer, p insights.Patterns, pred *insights.Prediction) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Patterns"), mutedStyle.Render(fmt.Sprintf("(local, %d dreams)", p.TotalDreams)))
	counts := func(list []insights.Count) string {
		parts := make([]string, 0, len(list))
		for _, c := range insights.Dominant(list, 5) {
			parts = append(parts, fmt.Sprintf("%s (%d)", c.Name, c.Count))
		}
		return strings.Join(parts, ", ")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "recurring\t%s\n", strings.Join(p.RecurringThemes, ", "))
	fmt.Fprintf(tw, "emotions\t%s\n", counts(p.Emotions))
	fmt.Fprintf(tw, "symbols\t%s\n", counts(p.Symbols))
	fmt.Fprintf(tw, "characters\t%s\n", counts(p.Characters))
	for _, t := range p.DreamTypes {
		fmt.Fprintf(tw, "type %s\t%d (%.0f%%)\n", t.Type, t.Frequency, t.Percentage)
	}
	fmt.Fprintf(tw, "lucidity\t%.1f %s\n", p.Lucidity.Average, p.Lucidity.Trend)
	fmt.Fprintf(tw, "sleep\t%.1f %s\n", p.SleepQuality.Average, p.SleepQuality.Trend)
	tw.Flush()

	if pred == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Prediction"), mutedStyle.Render(fmt.Sprintf("(confidence %.0f%%)", pred.Confidence*100)))
	if len(pred.Themes) > 0 {
		fmt.Fprintln(w, "themes: "+strings.Join(pred.Themes, ", "))
	}
	if len(pred.Emotions) > 0 {
		fmt.Fprintln(w, "emotions: "+strings.Join(pred.Emotions, ", "))
	}
	for _, rec := range pred.Recommendations {
		fmt.Fprintln(w, "- "+rec)
	}
}

func newNetworkCmd(r *runner) *cobra.Command {
	var (
		minSimilarity float64
		local         bool
	)
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Dreams linked by shared emotions, symbols and characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			var (
				n   *models.DreamNetwork
				err error
			)
			if local {
				var ln models.DreamNetwork
				ln, err = a.patterns.Network(ctx, minSimilarity)
				n = &ln
			} else {
				n, err = a.analysisStore.LoadNetwork(ctx, minSimilarity)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render("Network"), mutedStyle.Render(fmt.Sprintf("(%d connections)", n.TotalConnections)))
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, l := range n.Network {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", titleOr(l.Dream1.Title), titleOr(l.Dream2.Title), l.Similarity)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&minSimilarity, "min", 0.3, "minimum similarity for a local link")
	cmd.Flags().BoolVar(&local, "local", false, "compute from dreams on this device")
	return cmd
}

func newInsightsCmd(r *runner) *cobra.Command {
	var compare []string
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Daily insight and the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}

			if len(compare) > 0 {
				c, err := a.patterns.Compare(ctx, compare)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %.2f\n", titleStyle.Render("Similarity"), c.Similarity)
				fmt.Fprintln(a.out, "common: "+strings.Join(c.CommonThemes, ", "))
				for _, u := range c.UniqueElements {
					fmt.Fprintf(a.out, "only %s: %s\n", u.DreamID, strings.Join(u.Elements, ", "))
				}
				return nil
			}

			if in, err := a.analysisStore.LoadInsight(ctx); err == nil {
				fmt.Fprintln(a.out, titleStyle.Render("Today"))
				fmt.Fprintln(a.out, in.Insight)
				if in.Recommendation != "" {
					fmt.Fprintln(a.out, mutedStyle.Render(in.Recommendation))
				}
			} else {
				a.logger.Warn(ctx, "daily insight unavailable", "error", err)
			}

			dreams, err := a.manager.GetDreams(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, titleStyle.Render("This week"))
			for _, d := range insights.WeeklyActivity(dreams, time.Now()) {
				bar := strings.Repeat("#", d.Count)
				if d.Lucid {
					bar += " " + goodStyle.Render("lucid")
				}
				fmt.Fprintf(a.out, "%s %s %s\n", d.Day, d.Date, bar)
			}
			for _, s := range insights.EmotionDistribution(dreams, 3) {
				fmt.Fprintf(a.out, "%s %d%%\n", s.Name, s.Percentage)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&compare, "compare", nil, "compare the given dream ids instead")
	return cmd
}
