package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	contentinadapter "bookplus/internal/modules/content/adapter/in"
	contentoutadapter "bookplus/internal/modules/content/adapter/out"
	contentin "bookplus/internal/modules/content/port/in"
	contentout "bookplus/internal/modules/content/port/out"
	contentservice "bookplus/internal/modules/content/service"
	contentusecase "bookplus/internal/modules/content/usecase"
	libraryinadapter "bookplus/internal/modules/library/adapter/in"
	libraryoutadapter "bookplus/internal/modules/library/adapter/out"
	librarydto "bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
	libraryservice "bookplus/internal/modules/library/service"
	libraryusecase "bookplus/internal/modules/library/usecase"
	plugininadapter "bookplus/internal/modules/plugin/adapter/in"
	pluginoutadapter "bookplus/internal/modules/plugin/adapter/out"
	pluginout "bookplus/internal/modules/plugin/port/out"
	pluginservice "bookplus/internal/modules/plugin/service"
	pluginusecase "bookplus/internal/modules/plugin/usecase"
	profileinadapter "bookplus/internal/modules/profile/adapter/in"
	profileoutadapter "bookplus/internal/modules/profile/adapter/out"
	profileservice "bookplus/internal/modules/profile/service"
	profileusecase "bookplus/internal/modules/profile/usecase"
	readinginadapter "bookplus/internal/modules/reading/adapter/in"
	readingoutadapter "bookplus/internal/modules/reading/adapter/out"
	readingusecase "bookplus/internal/modules/reading/usecase"
	sessioninadapter "bookplus/internal/modules/session/adapter/in"
	sessionoutadapter "bookplus/internal/modules/session/adapter/out"
	sessionservice "bookplus/internal/modules/session/service"
	sessionusecase "bookplus/internal/modules/session/usecase"
	"bookplus/internal/platform/clock"
	"bookplus/internal/platform/config"
	"bookplus/internal/platform/id"
	"bookplus/internal/platform/logging"
	"bookplus/internal/platform/metrics"
	"bookplus/internal/server"
	uiapp "bookplus/internal/ui/app"
)

type App struct {
	Config  config.Config
	Logger  hclog.Logger
	Metrics *metrics.Registry

	LibraryCLI libraryinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	ProfileCLI profileinadapter.CLIHandler
	PluginCLI  plugininadapter.CLIHandler
	ContentCLI contentinadapter.CLIHandler
	ReadingCLI readinginadapter.CLIHandler
	ReadingTUI readinginadapter.TUIHandler

	routes []server.Routes
	host   pluginout.Host
}

func New(cfg config.Config, logger hclog.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)
	clk := clock.SystemClock{}
	ids := id.RandomHex{}
	registry := metrics.New()

	libraryProjector, err := libraryoutadapter.NewSQLiteBookProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new book projector: %w", err)
	}
	libraryUC := libraryusecase.NewInteractor(libraryservice.NewBookService(
		clk, ids,
		libraryoutadapter.NewVaultBookStore(cfg.VaultPath),
		libraryProjector,
	))

	host := pluginoutadapter.NewGRPCHost(logger.Named("plugin"))
	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.VaultPath),
		host,
	))

	var analyzer contentout.Analyzer = contentservice.NewHeuristicAnalyzer()
	if cfg.AnalyzerPlugin != "" {
		analyzer = contentoutadapter.NewPluginAnalyzer(pluginUC, cfg.AnalyzerPlugin)
	}
	contentUC := contentusecase.NewInteractor(contentservice.NewContentService(
		contentoutadapter.NewLibraryBookResolver(libraryUC),
		contentoutadapter.NewFileDocumentLoader(),
		analyzer,
		logger.Named("content"),
	))
	books := invalidatingLibrary{Usecase: libraryUC, content: contentUC}

	profileStore, err := profileoutadapter.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		_ = host.Close()
		return nil, fmt.Errorf("new profile store: %w", err)
	}
	profileUC := profileusecase.NewInteractor(profileservice.NewProfileService(clk, profileStore))

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, id.UUID{}, sessionoutadapter.NewVaultSessionStore(cfg.VaultPath)),
		books,
		sessionoutadapter.NewFileActiveSessionStore(cfg.VaultPath),
	)

	snapshots, err := readingoutadapter.NewSQLiteSnapshotStore(cfg.DBPath, clk)
	if err != nil {
		_ = host.Close()
		return nil, fmt.Errorf("new snapshot store: %w", err)
	}
	deps := readingusecase.Dependencies{
		Snapshots: snapshots,
		Reports:   readingoutadapter.NewFileReportWriter(cfg.ReportsDir),
		Sessions:  readingoutadapter.NewSessionTracker(sessionUC),
		Telemetry: readingoutadapter.NewPrometheusTelemetry(registry),
	}
	if cfg.RemoteURL != "" {
		remote, err := readingoutadapter.NewRemoteClient(cfg.RemoteURL, cfg.HTTPTimeout)
		if err != nil {
			_ = host.Close()
			return nil, fmt.Errorf("new remote client: %w", err)
		}
		deps.Content, deps.Patterns, deps.Baselines = remote, remote, remote
	} else {
		profiles := readingoutadapter.NewProfileBridge(profileUC)
		deps.Content = readingoutadapter.NewContentBridge(contentUC)
		deps.Patterns, deps.Baselines = profiles, profiles
	}
	readingUC := readingusecase.NewInteractor(deps, clk, ids, logger.Named("reading"), readingusecase.Options{
		UserKey:          cfg.UserKey,
		Version:          cfg.ContentVersion,
		Concurrency:      cfg.ReconcileConcurrency,
		DiscardStale:     cfg.DiscardStaleVariants,
		SnapshotInterval: cfg.SnapshotInterval,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    registry,
		LibraryCLI: libraryinadapter.NewCLIHandler(books),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		ProfileCLI: profileinadapter.NewCLIHandler(profileUC),
		PluginCLI:  plugininadapter.NewCLIHandler(pluginUC),
		ContentCLI: contentinadapter.NewCLIHandler(contentUC),
		ReadingCLI: readinginadapter.NewCLIHandler(readingUC),
		ReadingTUI: readinginadapter.NewTUIHandler(readingUC),
		routes: []server.Routes{
			libraryinadapter.NewHTTPHandler(books),
			contentinadapter.NewHTTPHandler(contentUC),
			profileinadapter.NewHTTPHandler(profileUC),
		},
		host: host,
	}, nil
}

// NewServer exposes the library, content and profile APIs on the configured
// listen address.
func (a *App) NewServer() *server.Server {
	return server.New(a.Config.ListenAddr, a.Logger, a.Metrics, a.routes...)
}

// Close stops plugin processes started during the run.
func (a *App) Close() error {
	if a.host == nil {
		return nil
	}
	return a.host.Close()
}

// RunTUI starts the terminal UI; a non-empty bookID opens that book directly.
func RunTUI(ctx context.Context, app *App, bookID string) error {
	model := uiapp.NewModel(app.Config, app.LibraryCLI, app.ReadingTUI, app.ProfileCLI, app.PluginCLI)
	if bookID != "" {
		book, err := app.LibraryCLI.GetBook(ctx, bookID)
		if err != nil {
			return err
		}
		model = model.OpenOnStart(book.ID, book.Title)
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// invalidatingLibrary drops cached content units whenever a book's record
// changes, so a new file path or format is picked up by the next read.
type invalidatingLibrary struct {
	libraryin.Usecase
	content contentin.Usecase
}

func (l invalidatingLibrary) UpdateBook(ctx context.Context, input librarydto.UpdateBookInput) (librarydto.BookOutput, error) {
	out, err := l.Usecase.UpdateBook(ctx, input)
	if err == nil {
		l.content.Invalidate(out.ID)
	}
	return out, err
}

func (l invalidatingLibrary) DeleteBook(ctx context.Context, id string) (librarydto.DeleteOutput, error) {
	out, err := l.Usecase.DeleteBook(ctx, id)
	if err == nil {
		l.content.Invalidate(id)
	}
	return out, err
}

func (l invalidatingLibrary) Reindex(ctx context.Context, input librarydto.ReindexInput) error {
	if err := l.Usecase.Reindex(ctx, input); err != nil {
		return err
	}
	books, err := l.Usecase.ListBooks(ctx)
	if err != nil {
		return err
	}
	for _, book := range books {
		l.content.Invalidate(book.ID)
	}
	return nil
}
