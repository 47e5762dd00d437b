package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// runREPL reads lines from reader and passes their words to exec until
// EOF, ctx ends or the user types exit. Errors are printed and the loop
// continues.
func runREPL(ctx context.Context, exec func(ctx context.Context, args []string) error, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "dt %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts, perr := splitLine(line)
		if perr != nil {
			fmt.Fprintln(out, ErrorLine(perr))
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "shell":
			fmt.Fprintln(out, "already in the shell")
			continue
		}

		if err := exec(ctx, parts); err != nil {
			fmt.Fprintln(out, ErrorLine(err))
		}
	}
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitLine splits on whitespace. Single or double quotes group words.
func splitLine(line string) ([]string, error) {
	var (
		parts  []string
		cur    strings.Builder
		quote  rune
		inWord bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				parts = append(parts, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inWord {
		parts = append(parts, cur.String())
	}
	return parts, nil
}

func (a *App) status(ctx context.Context) string {
	s := string(a.Mode())
	if u, err := a.auth.User(ctx); err == nil && u != nil {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		if name != "" {
			s = name + " " + s
		}
	}
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func newShellCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session with background sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a := r.app
			r.interactive = true
			defer func() { r.interactive = false }()

			if err := a.authStore.Restore(ctx); err != nil {
				a.logger.Debug(ctx, "no saved session", "error", err)
			}

			go a.dreamStore.Watch(ctx)
			go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

			fmt.Fprintln(a.out, titleStyle.Render("DreamTracer shell")+" "+mutedStyle.Render("(type 'help' for commands, 'exit' to leave)"))

			exec := func(ctx context.Context, args []string) error {
				sub := newRootCmd(r)
				sub.SetArgs(args)
				return sub.ExecuteContext(ctx)
			}
			runREPL(ctx, exec, func() string { return a.status(ctx) }, a.reader, a.out)
			return nil
		},
	}
}
