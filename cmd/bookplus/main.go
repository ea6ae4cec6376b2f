package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bookplus/internal/bootstrap"
	librarydto "bookplus/internal/modules/library/dto"
	"bookplus/internal/platform/config"
	"bookplus/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var vaultPath string

	root := &cobra.Command{
		Use:           "bookplus",
		Short:         "Adaptive reading with reading-speed analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&vaultPath, "vault", ".", "vault path holding books, session notes and .bookplus state")

	root.AddCommand(newTUICmd(&vaultPath))
	root.AddCommand(newReadCmd(&vaultPath))
	root.AddCommand(newBookCmd(&vaultPath))
	root.AddCommand(newSessionCmd(&vaultPath))
	root.AddCommand(newProfileCmd(&vaultPath))
	root.AddCommand(newPluginCmd(&vaultPath))
	root.AddCommand(newServeCmd(&vaultPath))
	root.AddCommand(newReportCmd(&vaultPath))
	root.AddCommand(newReindexCmd(&vaultPath))
	return root
}

// loadApp wires the application. The TUI owns the terminal, so interactive
// commands log to the vault log file instead of stderr.
func loadApp(vaultPath string, logToFile bool) (*bootstrap.App, func(), error) {
	cfg, err := config.New(vaultPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New("bookplus", cfg.LogLevel, os.Stderr)
	var logFile io.Closer
	if logToFile {
		logger, logFile, err = logging.NewFile("bookplus", cfg.LogLevel, cfg.LogPath)
		if err != nil {
			return nil, nil, err
		}
	}
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, nil, err
	}
	cleanup := func() {
		if err := app.Close(); err != nil {
			logger.Warn("stop plugins", "error", err)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return app, cleanup, nil
}

func newTUICmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the bookplus terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, true)
			if err != nil {
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(cmd.Context(), app, "")
		},
	}
}

func newReadCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "read <book-id>",
		Short: "Open a book in the reader and record a reading session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, true)
			if err != nil {
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(cmd.Context(), app, args[0])
		},
	}
}

func newBookCmd(vaultPath *string) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Manage the book catalog"}

	var input librarydto.BookInput
	add := &cobra.Command{
		Use:   "add [file]",
		Short: "Add a book, optionally backed by a markdown, text, html or pdf file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				input.Path = args[0]
			}
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.LibraryCLI.AddBook(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) note=%s\n", out.Title, out.ID, out.NotePath)
			return nil
		},
	}
	bindBookFlags(add, &input)
	book.AddCommand(add)

	book.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			books, err := app.LibraryCLI.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			if len(books) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
				return nil
			}
			for _, b := range books {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.Format)
			}
			return nil
		},
	})

	book.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show book details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			b, err := app.LibraryCLI.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ntitle: %s\nauthor: %s\nyear: %d\nisbn: %s\nfile: %s\nformat: %s\nnote: %s\nlast_session: %s\n",
				b.ID, b.Title, b.Author, b.PublishedYear, b.ISBN, b.FilePath, b.Format, b.NotePath, b.LastSessionID)
			if b.Description != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", b.Description)
			}
			return nil
		},
	})

	var patch librarydto.BookInput
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			current, err := app.LibraryCLI.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			input := librarydto.BookInput{
				Title:         current.Title,
				Author:        current.Author,
				Description:   current.Description,
				ISBN:          current.ISBN,
				PublishedYear: current.PublishedYear,
				Path:          current.FilePath,
				Format:        current.Format,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				input.Title = patch.Title
			}
			if flags.Changed("author") {
				input.Author = patch.Author
			}
			if flags.Changed("description") {
				input.Description = patch.Description
			}
			if flags.Changed("isbn") {
				input.ISBN = patch.ISBN
			}
			if flags.Changed("year") {
				input.PublishedYear = patch.PublishedYear
			}
			if flags.Changed("file") {
				input.Path, input.Format = patch.Path, patch.Format
			}
			if flags.Changed("format") {
				input.Format = patch.Format
			}
			out, err := app.LibraryCLI.UpdateBook(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s)\n", out.Title, out.ID)
			return nil
		},
	}
	bindBookFlags(update, &patch)
	update.Flags().StringVar(&patch.Path, "file", "", "book file path (empty detaches the file)")
	book.AddCommand(update)

	book.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book and its note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.LibraryCLI.DeleteBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", out.Title, out.ID)
			return nil
		},
	})

	var unitIndex int
	var version string
	var analysis bool
	units := &cobra.Command{
		Use:   "units <id>",
		Short: "Show the unit count, or one unit with --index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			if !cmd.Flags().Changed("index") {
				count, err := app.ContentCLI.UnitCount(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s: %d units\n", count.BookID, count.Total)
				return nil
			}
			if analysis {
				a, err := app.ContentCLI.Analysis(ctx, args[0], unitIndex)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "type=%s importance=%.2f difficulty=%.2f segments=%d\n",
					a.PrimaryType, a.ImportanceScore, a.ReadingDifficulty, len(a.Segments))
				for _, s := range a.Segments {
					_, _ = fmt.Fprintf(out, "  [%s] %s\n", s.Kind, s.Text)
				}
				return nil
			}
			if version != "" {
				v, err := app.ContentCLI.Variant(ctx, args[0], unitIndex, version)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "[%s]\n%s\n", v.Version, v.Text)
				for _, h := range v.HighlightedSentences {
					_, _ = fmt.Fprintf(out, "  * %s\n", h)
				}
				return nil
			}
			text, err := app.ContentCLI.UnitText(ctx, args[0], unitIndex)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, text.Text)
			return nil
		},
	}
	units.Flags().IntVar(&unitIndex, "index", 0, "zero-based unit index")
	units.Flags().StringVar(&version, "version", "", "adaptive version: full|condensed|summary|auto")
	units.Flags().BoolVar(&analysis, "analysis", false, "show the unit analysis")
	book.AddCommand(units)

	return book
}

func bindBookFlags(cmd *cobra.Command, input *librarydto.BookInput) {
	cmd.Flags().StringVar(&input.Title, "title", "", "book title (defaults to the file name)")
	cmd.Flags().StringVar(&input.Author, "author", "", "author")
	cmd.Flags().StringVar(&input.Description, "description", "", "description")
	cmd.Flags().StringVar(&input.ISBN, "isbn", "", "ISBN")
	cmd.Flags().IntVar(&input.PublishedYear, "year", 0, "publication year")
	cmd.Flags().StringVar(&input.Format, "format", "", "file format: markdown|text|html|pdf (inferred from the extension)")
}

func newSessionCmd(vaultPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Reading session lifecycle"}

	session.AddCommand(&cobra.Command{
		Use:   "start <book-id>",
		Short: "Start a session without the reader, e.g. for a paper copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SessionCLI.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s book=%s at=%s\n", out.SessionID, out.BookID, out.StartedAt.Format(time.RFC3339))
			return nil
		},
	})

	var sessionID, outcome string
	end := &cobra.Command{
		Use:   "end",
		Short: "End the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SessionCLI.End(cmd.Context(), sessionID, outcome)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s book=%s outcome=%s duration=%dmin note=%s\n",
				out.SessionID, out.BookID, out.Outcome, out.DurationMin, out.Path)
			return nil
		},
	}
	end.Flags().StringVar(&sessionID, "session-id", "", "optional session id (defaults to the active session)")
	end.Flags().StringVar(&outcome, "outcome", "completed", "completed|abandoned")
	session.AddCommand(end)

	session.AddCommand(&cobra.Command{
		Use:   "active",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SessionCLI.GetActive(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tsince %s\n", out.SessionID, out.BookID, out.BookTitle, out.StartedAt.Format(time.RFC3339))
			return nil
		},
	})
	return session
}

func newProfileCmd(vaultPath *string) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Reading patterns and speed baselines"}
	var user string
	profile.PersistentFlags().StringVar(&user, "user", "", "user key (defaults to the configured user)")

	userKey := func(app *bootstrap.App) string {
		if strings.TrimSpace(user) != "" {
			return user
		}
		return app.Config.UserKey
	}

	profile.AddCommand(&cobra.Command{
		Use:   "baseline",
		Short: "Show the speed baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ProfileCLI.Baseline(cmd.Context(), userKey(app))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "normal_wpm=%s skim_wpm=%s\n", wpm(out.NormalWPM), wpm(out.SkimWPM))
			return nil
		},
	})

	var normal, skim float64
	set := &cobra.Command{
		Use:   "set",
		Short: "Set the speed baseline by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			var normalPtr, skimPtr *float64
			if cmd.Flags().Changed("normal") {
				normalPtr = &normal
			}
			if cmd.Flags().Changed("skim") {
				skimPtr = &skim
			}
			out, err := app.ProfileCLI.SetBaseline(cmd.Context(), userKey(app), normalPtr, skimPtr)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "baseline saved: normal_wpm=%s skim_wpm=%s\n", wpm(out.NormalWPM), wpm(out.SkimWPM))
			return nil
		},
	}
	set.Flags().Float64Var(&normal, "normal", 0, "normal reading speed in words per minute")
	set.Flags().Float64Var(&skim, "skim", 0, "skimming speed in words per minute")
	profile.AddCommand(set)

	profile.AddCommand(&cobra.Command{
		Use:   "learn",
		Short: "Learn the baseline from recorded reading patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ProfileCLI.Learn(cmd.Context(), userKey(app))
			if err != nil {
				return err
			}
			if !out.Learned {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "not enough patterns (%d); baseline unchanged\n", out.Samples)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "learned from %d patterns: normal_wpm=%s skim_wpm=%s\n",
				out.Samples, wpm(out.Baseline.NormalWPM), wpm(out.Baseline.SkimWPM))
			return nil
		},
	})

	var limit int
	patterns := &cobra.Command{
		Use:   "patterns",
		Short: "List recorded reading patterns, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ProfileCLI.Patterns(cmd.Context(), userKey(app), limit)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no patterns")
				return nil
			}
			for _, p := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d wpm\t%.1fs\n", p.RecordedAt.Format(time.RFC3339), p.ContentType, p.WPM, p.DwellTimeSeconds)
			}
			return nil
		},
	}
	patterns.Flags().IntVar(&limit, "limit", 20, "maximum patterns to list (0 for all)")
	profile.AddCommand(patterns)
	return profile
}

func wpm(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}

func newPluginCmd(vaultPath *string) *cobra.Command {
	plugin := &cobra.Command{Use: "plugin", Short: "Analyzer plugin operations"}
	plugin.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plugin manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			plugins, err := app.PluginCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(plugins) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, p := range plugins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s capabilities=%s\n",
					p.Name, p.Version, p.Enabled, p.Binary, strings.Join(p.Capabilities, ","))
			}
			return nil
		},
	})

	plugin.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			results, err := app.PluginCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	var analyzeText string
	analyze := &cobra.Command{
		Use:   "analyze <plugin>",
		Short: "Run a plugin's analysis over --text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(analyzeText) == "" {
				return fmt.Errorf("--text is required")
			}
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.PluginCLI.Analyze(cmd.Context(), args[0], analyzeText)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s type=%s importance=%.2f difficulty=%.2f\n",
				out.PluginName, out.PrimaryType, out.ImportanceScore, out.ReadingDifficulty)
			for _, s := range out.Segments {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", s.Kind, s.Text)
			}
			return nil
		},
	}
	analyze.Flags().StringVar(&analyzeText, "text", "", "text to analyze")
	plugin.AddCommand(analyze)

	var adaptText, adaptVersion string
	adapt := &cobra.Command{
		Use:   "adapt <plugin>",
		Short: "Ask a plugin for an adaptive variant of --text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(adaptText) == "" {
				return fmt.Errorf("--text is required")
			}
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.PluginCLI.Adapt(cmd.Context(), args[0], adaptText, adaptVersion)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "plugin=%s version=%s\n%s\n", out.PluginName, out.Version, out.Text)
			for _, h := range out.HighlightedSentences {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  * %s\n", h)
			}
			return nil
		},
	}
	adapt.Flags().StringVar(&adaptText, "text", "", "text to adapt")
	adapt.Flags().StringVar(&adaptVersion, "version", "summary", "full|condensed|summary|auto")
	plugin.AddCommand(adapt)
	return plugin
}

func newServeCmd(vaultPath *string) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library, content and profile HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if addr != "" {
				app.Config.ListenAddr = addr
			}
			app.Logger.Info("serving", "addr", app.Config.ListenAddr, "vault", app.Config.VaultPath)
			return app.NewServer().Run(cmd.Context())
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured listen_addr)")
	return serve
}

func newReindexCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite book index from vault notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := app.LibraryCLI.Reindex(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex completed")
			return nil
		},
	}
}
