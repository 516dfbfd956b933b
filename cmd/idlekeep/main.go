package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/napolitain/idlekeep/internal/advisor"
	"github.com/napolitain/idlekeep/internal/api"
	"github.com/napolitain/idlekeep/internal/engine"
	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
	"github.com/napolitain/idlekeep/internal/models"
	"github.com/napolitain/idlekeep/internal/persistence"
	"github.com/napolitain/idlekeep/internal/tui"
)

var (
	dataFile string
	dbPath   string
	slot     string
	seed     int64
	verbose  bool

	ticks    int
	autoplay bool

	addr         string
	autosaveTick uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "idlekeep",
		Short: "Idle settlement economy",
		Long: `An idle settlement game: gather resources, construct buildings and
research upgrades while seasons and weather turn. Progress is saved to a
local SQLite slot and caught up when you come back.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "Path to a YAML or JSON catalog (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "idlekeep.db", "Path to the SQLite save database")
	rootCmd.PersistentFlags().StringVarP(&slot, "slot", "s", persistence.DefaultSlot, "Save slot name")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Override the catalog's weather seed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	catalogCmd := &cobra.Command{
		Use:   "catalog [id]",
		Short: "Show resources, buildings and upgrades",
		Args:  cobra.MaximumNArgs(1),
		Run:   runCatalog,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the economy headless for a number of ticks",
		Run:   runSimulate,
	}
	simulateCmd.Flags().IntVarP(&ticks, "ticks", "t", 3600, "Ticks to simulate")
	simulateCmd.Flags().BoolVarP(&autoplay, "auto", "a", false, "Let the advisor build and research")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Run:   runPlay,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game in real time behind an HTTP and WebSocket API",
		Run:   runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	serveCmd.Flags().Uint64Var(&autosaveTick, "autosave", 60, "Autosave every N ticks (0 disables)")

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Manage save slots",
	}
	saveCmd.AddCommand(
		&cobra.Command{Use: "inspect", Short: "Show the slot summary and checksum status", Run: runSaveInspect},
		&cobra.Command{Use: "reset", Short: "Delete the slot", Run: runSaveReset},
		&cobra.Command{Use: "list", Short: "List save slots", Run: runSaveList},
	)

	rootCmd.AddCommand(catalogCmd, simulateCmd, playCmd, serveCmd, saveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}

func loadDefinitions(cmd *cobra.Command) *models.Definitions {
	var (
		defs *models.Definitions
		err  error
	)
	if dataFile != "" {
		defs, err = loader.Load(dataFile)
	} else {
		defs, err = loader.LoadDefault()
	}
	if err != nil {
		fail("Error loading catalog: %v", err)
	}
	if cmd.Flags().Changed("seed") {
		defs.Settings.Seed = seed
	}
	return defs
}

func newGame(cmd *cobra.Command) *game.Game {
	g, err := game.New(loadDefinitions(cmd))
	if err != nil {
		fail("Error building game: %v", err)
	}
	return g
}

func openStore() *persistence.SQLiteStore {
	store, err := persistence.OpenSQLite(dbPath)
	if err != nil {
		fail("Error opening save database: %v", err)
	}
	return store
}

// resume loads the slot into g; a missing slot starts a new game
func resume(ctx context.Context, store persistence.Store, g *game.Game) {
	res, err := persistence.LoadGame(ctx, store, slot, g, time.Now())
	switch {
	case errors.Is(err, persistence.ErrNoSave):
		color.Yellow("No save in slot %q, starting a new game", slot)
	case err != nil:
		fail("Error loading save: %v", err)
	default:
		if !res.Verified {
			color.Yellow("Warning: save checksum mismatch, loaded anyway")
		}
		if res.Ticks > 0 {
			color.Cyan("Welcome back: caught up %d ticks since %s", res.Ticks, res.SavedAt.Format(time.DateTime))
		}
	}
}

func runCatalog(cmd *cobra.Command, args []string) {
	defs := loadDefinitions(cmd)
	if len(args) == 1 {
		printEntry(defs, args[0])
		return
	}
	printResources(defs)
	printBuildings(defs)
	printUpgrades(defs)
}

func runSimulate(cmd *cobra.Command, args []string) {
	titleColor := color.New(color.FgCyan, color.Bold)
	infoColor := color.New(color.FgYellow)

	g := newGame(cmd)
	titleColor.Printf("\nSimulating %d ticks", ticks)
	if autoplay {
		titleColor.Print(" with autoplay")
	}
	fmt.Println()

	actions := 0
	for i := 0; i < ticks; i++ {
		if autoplay {
			c, ok, err := advisor.Step(g)
			if err != nil {
				fail("Autoplay failed at tick %d: %v", i, err)
			}
			if ok {
				actions++
				if !verbose {
					infoColor.Printf("   [%6d] %s\n", g.Clock().State().Tick, c)
				}
			}
		}
		g.Tick()
	}

	fmt.Println()
	color.New(color.FgGreen, color.Bold).Printf("✓ %s after %d ticks, %d actions\n\n", g.Time().Label, ticks, actions)
	printState(g.View())
}

func runPlay(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	g := newGame(cmd)
	store := openStore()
	defer store.Close()

	resume(ctx, store, g)

	if _, err := tea.NewProgram(tui.New(g), tea.WithAltScreen()).Run(); err != nil {
		fail("Error running terminal UI: %v", err)
	}
	if err := persistence.SaveGame(ctx, store, slot, g, time.Now()); err != nil {
		fail("Error saving: %v", err)
	}
	color.Green("✓ Saved to slot %q", slot)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := newGame(cmd)
	store := openStore()
	defer store.Close()
	resume(ctx, store, g)

	mu := &sync.Mutex{}
	save := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		return persistence.SaveGame(ctx, store, slot, g, time.Now())
	}

	eng := engine.New(g, g.Settings().TickInterval())
	eng.Lock = mu
	eng.AutosaveEvery = autosaveTick
	eng.OnAutosave = save

	hub := api.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(g, hub, mu).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", addr, "slot", slot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	if err := save(shutdownCtx); err != nil {
		fail("Error saving: %v", err)
	}
	color.Green("✓ Saved to slot %q after %d ticks", slot, eng.Ticks)
}

func runSaveInspect(cmd *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	rec, snap, verified, err := persistence.Inspect(context.Background(), store, slot)
	if errors.Is(err, persistence.ErrNoSave) {
		fail("No save in slot %q", slot)
	}
	if err != nil {
		fail("Error reading save: %v", err)
	}
	printSave(rec, snap, verified)
}

func runSaveReset(cmd *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	if err := store.Delete(context.Background(), slot); err != nil {
		if errors.Is(err, persistence.ErrNoSave) {
			fail("No save in slot %q", slot)
		}
		fail("Error deleting save: %v", err)
	}
	color.Green("✓ Deleted slot %q", slot)
}

func runSaveList(cmd *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	slots, err := store.Slots(context.Background())
	if err != nil {
		fail("Error listing saves: %v", err)
	}
	if len(slots) == 0 {
		color.Yellow("No saves in %s", dbPath)
		return
	}
	for _, s := range slots {
		fmt.Println(s)
	}
}
