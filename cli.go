package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"countdown_tui/internal"
	"countdown_tui/internal/config"
	"countdown_tui/internal/countdown"
	"countdown_tui/internal/history"
	"countdown_tui/internal/runner"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const tuiLogFile = "countdown_tui.log"

type App struct {
	cfg struct {
		configPath string
		logLevel   string
		limit      int
		save       bool
	}

	root *cobra.Command

	// entry point
	Execute func() error
}

func NewApp() *App {
	a := &App{}

	defaultPath, err := config.DefaultPath()
	if err != nil {
		defaultPath = "config.yaml"
	}

	// root
	rootCmd := &cobra.Command{
		Use:           "countdown_tui",
		Short:         "Countdown timer with preset durations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.tuiCmd,
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfg.configPath, "config", "c", defaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&a.cfg.logLevel, "log-level", "", "Log level, overrides the configuration file")
	a.root = rootCmd
	a.Execute = rootCmd.Execute

	// run
	runCmd := &cobra.Command{
		Use:   "run <label>",
		Short: "Count down a preset such as \"10 sec\" in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runCmd,
	}
	rootCmd.AddCommand(runCmd)

	// presets
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "List the preset durations",
		RunE:  a.presetsCmd,
	}
	rootCmd.AddCommand(presetsCmd)

	// history
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent countdowns",
		RunE:  a.historyCmd,
	}
	historyCmd.Flags().IntVarP(&a.cfg.limit, "limit", "n", 0, "Number of entries, defaults to history.limit")
	rootCmd.AddCommand(historyCmd)

	// config
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print configuration",
		RunE:  a.configCmd,
	}
	configCmd.Flags().BoolVar(&a.cfg.save, "save", false, "Write the effective configuration to the configuration file")
	rootCmd.AddCommand(configCmd)

	return a
}

func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.cfg.configPath)
	if err != nil {
		return cfg, err
	}

	if a.cfg.logLevel != "" {
		cfg.LogLevel = a.cfg.logLevel
		if _, err := cfg.Level(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (a *App) newLogger(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	return logger, nil
}

// openHistory returns a nil repository when history is disabled.
func (a *App) openHistory(cfg config.Config) (*history.Repository, error) {
	if cfg.History.Path == "" {
		return nil, nil
	}
	return history.NewRepository(cfg.History.Path)
}

func (a *App) tuiCmd(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// the alt screen owns stdout, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if level, _ := cfg.Level(); level >= logrus.DebugLevel {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := a.newLogger(cfg, logOut)
	if err != nil {
		return err
	}

	repo, err := a.openHistory(cfg)
	if err != nil {
		return err
	}
	if repo != nil {
		defer repo.Close()
	}

	engine := countdown.New(countdown.DefaultOptions().
		WithLogger(logger).
		WithTickInterval(cfg.TickInterval))

	m := internal.NewModel(engine, cfg.Presets, repo, cfg.History.Limit)
	p := tea.NewProgram(m, tea.WithAltScreen())

	var g errgroup.Group
	events := engine.Subscribe(64)
	g.Go(func() error {
		for event := range events {
			p.Send(internal.MsgEngine{Event: event})
		}
		return nil
	})
	if repo != nil {
		recorder := history.NewRecorder(repo, logger)
		recorded := engine.Subscribe(64)
		g.Go(func() error {
			recorder.Run(context.Background(), recorded)
			return nil
		})
	}

	_, err = p.Run()
	// closing the engine ends both subscriptions
	engine.Close()
	if werr := g.Wait(); werr != nil {
		return werr
	}
	return err
}

func (a *App) runCmd(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, err := a.newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	label := args[0]
	if _, ok := cfg.Presets.Find(label); !ok {
		logger.WithField("label", label).Warn("label is not a configured preset")
	}

	repo, err := a.openHistory(cfg)
	if err != nil {
		return err
	}
	if repo != nil {
		defer repo.Close()
	}

	engine := countdown.New(countdown.DefaultOptions().
		WithLogger(logger).
		WithTickInterval(cfg.TickInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var g errgroup.Group
	if repo != nil {
		recorder := history.NewRecorder(repo, logger)
		recorded := engine.Subscribe(64)
		g.Go(func() error {
			recorder.Run(context.Background(), recorded)
			return nil
		})
	}

	err = runner.Run(ctx, engine, label, os.Stdout)
	engine.Close()
	if werr := g.Wait(); werr != nil {
		return werr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) presetsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	for _, row := range cfg.Presets.Rows() {
		for _, p := range row {
			total, _, err := p.Seconds()
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %6g %-4s %s\n", p.Label, p.Magnitude, p.Unit, time.Duration(total)*time.Second)
		}
		fmt.Println()
	}
	return nil
}

func (a *App) historyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	repo, err := a.openHistory(cfg)
	if err != nil {
		return err
	}
	if repo == nil {
		fmt.Println("History is disabled")
		return nil
	}
	defer repo.Close()

	limit := a.cfg.limit
	if limit <= 0 {
		limit = cfg.History.Limit
	}
	entries, err := repo.Recent(limit)
	if err != nil {
		return err
	}
	count, err := repo.Count()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No countdowns recorded yet")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s %-10s %s of %s\n",
			humanize.Time(e.EndedAt),
			e.Label,
			e.Outcome,
			e.Elapsed(),
			time.Duration(e.TotalSeconds)*time.Second,
		)
	}
	fmt.Printf("\n%d of %d countdowns\n", len(entries), count)
	return nil
}

func (a *App) configCmd(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.cfg.save {
		if err := config.Save(a.cfg.configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", a.cfg.configPath)
		return nil
	}

	d, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Printf("---\n%s\n", string(d))
	return nil
}
