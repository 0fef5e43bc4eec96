package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/inkwell-sh/inkwell/internal/assist"
	"github.com/inkwell-sh/inkwell/internal/bus"
	"github.com/inkwell-sh/inkwell/internal/config"
	"github.com/inkwell-sh/inkwell/internal/draft"
	"github.com/inkwell-sh/inkwell/internal/editor"
	"github.com/inkwell-sh/inkwell/internal/lockfile"
	"github.com/inkwell-sh/inkwell/internal/notify"
	"github.com/inkwell-sh/inkwell/internal/provider"
	"github.com/inkwell-sh/inkwell/internal/storage"
	"github.com/inkwell-sh/inkwell/internal/textwin"
)

var (
	editNew   bool
	editTitle string
)

var editCmd = &cobra.Command{
	Use:   "edit [draft-id]",
	Short: "Open a draft in the editor",
	Long: `Open a draft in the editor.

With a draft ID (or unambiguous prefix), opens that draft.
With --new or no arguments, starts a new draft.

Examples:
  inkwell edit                   # New draft
  inkwell edit --title "Launch"  # New titled draft
  inkwell edit 3f2a              # Open draft by ID prefix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editNew, "new", false, "start a new draft")
	editCmd.Flags().StringVar(&editTitle, "title", "", "title for a new draft")
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Assist.ValidateAndFix()

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	logger, logCloser, err := setupLogging(cfg, paths)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// One editor per data dir, or two sessions autosave over each other.
	lock := lockfile.New(paths.LockFile())
	if err := lock.Acquire(); err != nil {
		return fmt.Errorf("another inkwell editor is running: %w", err)
	}
	defer lock.Release()

	store, err := storage.NewSQLiteStore(databasePath(cfg, paths))
	if err != nil {
		return fmt.Errorf("failed to open draft database: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	doc, err := resolveDraft(ctx, store, args)
	if err != nil {
		return err
	}

	prov, reviser := buildProvider(cfg, store, logger)
	sender := buildSender(cfg, paths, logger)
	saveFn := makeSaveFunc(cfg, store, doc, sender, logger)

	// Detect the terminal before the program takes over the screen.
	lipgloss.SetColorProfile(termenv.ColorProfile())
	dark := termenv.HasDarkBackground()
	switch cfg.Editor.Theme {
	case "dark":
		dark = true
	case "light":
		dark = false
	}

	opts := editor.Options{
		Doc:           doc,
		Provider:      prov,
		Assist:        assistConfig(cfg, logger),
		Reviser:       reviser,
		Bus:           bus.New(),
		Save:          saveFn,
		AutosaveEvery: time.Duration(cfg.Editor.AutosaveSecs) * time.Second,
		ShowStats:     cfg.Editor.ShowStats,
		DarkTheme:     dark,
		Logger:        logger,
	}
	m := editor.New(opts)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.Attach(p)

	logger.Info("editor session started", "draft_id", doc.ID(), "title", doc.Title())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	logger.Info("editor session ended", "draft_id", doc.ID())
	return nil
}

// resolveDraft opens the requested draft or creates a fresh one.
func resolveDraft(ctx context.Context, store storage.Store, args []string) (*draft.Document, error) {
	if len(args) == 1 && !editNew {
		d, err := store.GetDraftByPrefix(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return draft.Load(d.DraftID, d.Title, d.Text), nil
	}

	doc := draft.New(editTitle)
	now := time.Now().UnixMilli()
	err := store.CreateDraft(ctx, &storage.Draft{
		DraftID:         doc.ID(),
		Title:           doc.Title(),
		CreatedAtUnixMs: now,
		UpdatedAtUnixMs: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return doc, nil
}

// buildProvider assembles the suggestion provider chain: the Gemini
// adapter wrapped in the sqlite read-through cache. provider.name "none"
// disables assistance entirely.
func buildProvider(cfg *config.Config, store *storage.SQLiteStore, logger *slog.Logger) (provider.Provider, provider.Reviser) {
	if !cfg.Assist.Enabled || cfg.Provider.Name != "gemini" {
		return nil, nil
	}

	gem := provider.NewGemini(provider.GeminiConfig{
		Model:        cfg.Provider.Model,
		APIKeyEnv:    cfg.Provider.APIKeyEnv,
		SearchKeyEnv: cfg.Provider.SearchKeyEnv,
		UseSearch:    cfg.Provider.UseSearch,
		Redact:       cfg.Privacy.RedactSecrets,
		Timeout:      time.Duration(cfg.Assist.FetchTimeoutMs) * time.Millisecond,
		Logger:       logger,
	})

	var prov provider.Provider = gem
	if cfg.Provider.CacheTTLMins > 0 {
		ttl := time.Duration(cfg.Provider.CacheTTLMins) * time.Minute
		sugCache := storage.NewSuggestionStore(store, gem.Name(), ttl)
		prov = provider.NewCached(gem, sugCache, logger)
	}
	return prov, gem
}

// buildSender wires the fire-and-forget draft event sink, or nil when
// disabled.
func buildSender(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *notify.Sender {
	if !cfg.Notify.Enabled || notify.IsNoNotify() {
		return nil
	}
	socket := cfg.Notify.SocketPath
	if socket == "" {
		socket = paths.SocketFile()
	}
	sender := notify.NewSender(notify.NewUnixTransport(socket))
	if cfg.Notify.ConnectTimeoutMs > 0 {
		sender.SetConnectTimeout(time.Duration(cfg.Notify.ConnectTimeoutMs) * time.Millisecond)
	}
	if cfg.Notify.WriteTimeoutMs > 0 {
		sender.SetWriteTimeout(time.Duration(cfg.Notify.WriteTimeoutMs) * time.Millisecond)
	}
	logger.Debug("draft events enabled", "socket", socket)
	return sender
}

// makeSaveFunc persists the draft row; a non-empty origin also records a
// labeled revision, emits a draft event, and prunes old revisions.
func makeSaveFunc(cfg *config.Config, store storage.Store, doc *draft.Document, sender *notify.Sender, logger *slog.Logger) editor.SaveFunc {
	return func(text, origin string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		now := time.Now().UnixMilli()
		if err := store.SaveDraftText(ctx, doc.ID(), text, now); err != nil {
			return err
		}
		if origin == "" {
			return nil
		}

		rev := &storage.Revision{
			DraftID:         doc.ID(),
			Origin:          origin,
			Text:            text,
			CreatedAtUnixMs: now,
		}
		if err := store.AddRevision(ctx, rev); err != nil {
			return err
		}
		if _, err := store.PruneRevisions(ctx, cfg.Storage.RetentionDays, cfg.Storage.MaxRevisionsPerDraft); err != nil {
			logger.Warn("revision prune failed", "error", err)
		}

		if sender != nil {
			ev := notify.NewDraftEvent()
			ev.Ts = now
			ev.DraftID = doc.ID()
			ev.Title = doc.Title()
			ev.Words = textwin.Words(text)
			ev.Revision = rev.Seq
			ev.Origin = origin
			sender.Send(ev)
		}
		return nil
	}
}

// assistConfig translates the yaml trigger settings into the controller
// config.
func assistConfig(cfg *config.Config, logger *slog.Logger) assist.Config {
	return assist.Config{
		MinWords:      cfg.Assist.MinWords,
		FirstDelay:    time.Duration(cfg.Assist.FirstDelayMs) * time.Millisecond,
		CueDelay:      time.Duration(cfg.Assist.CueDelayMs) * time.Millisecond,
		CueCooldown:   time.Duration(cfg.Assist.CueCooldownMs) * time.Millisecond,
		TailChars:     cfg.Assist.TailChars,
		MaxCandidates: cfg.Assist.MaxCandidates,
		FetchTimeout:  time.Duration(cfg.Assist.FetchTimeoutMs) * time.Millisecond,
		Logger:        logger,
	}
}

// databasePath resolves the sqlite path: explicit config wins, then the
// XDG data dir.
func databasePath(cfg *config.Config, paths *config.Paths) string {
	if cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath
	}
	return paths.DatabaseFile()
}
