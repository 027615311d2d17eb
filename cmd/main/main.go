package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Guide5210/Tensiometer-Arduino/src/analysis"
	"github.com/Guide5210/Tensiometer-Arduino/src/catalog"
	"github.com/Guide5210/Tensiometer-Arduino/src/channel"
	"github.com/Guide5210/Tensiometer-Arduino/src/config"
	"github.com/Guide5210/Tensiometer-Arduino/src/interfaces"
	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/report"
	"github.com/Guide5210/Tensiometer-Arduino/src/server"
	"github.com/Guide5210/Tensiometer-Arduino/src/session"
	"github.com/Guide5210/Tensiometer-Arduino/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// Setup storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	if err := os.MkdirAll(config.Output.Dir, 0755); err != nil {
		appLogger.Critical("Failed to create output dir: %v", err)
	}

	// Setup status server
	var srv interfaces.IDataExchanger = server.NewStatusServer(config.MConfig, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Status server failed: %v", err)
		}
	}()

	// Setup device session
	ch := channel.NewSerialChannel(config.MConfig, appLogger)
	cat := catalog.NewCatalog(config.MConfig)
	agg := analysis.NewRunAggregator(appLogger)
	ctrl := session.NewController(config.MConfig, appLogger, ch, cat, agg, srv)

	if err := ctrl.Connect(); err != nil {
		appLogger.Critical("Failed to connect to device: %v", err)
	}
	defer ctrl.Terminate()

	// Reporters, in the order their files are written on save
	var reporters []interfaces.IReporter
	if config.Output.Excel {
		reporters = append(reporters, report.NewExcelReporter(config.MConfig, appLogger))
	}
	if config.Output.CSV {
		reporters = append(reporters, report.NewCSVReporter(config.MConfig, appLogger))
	}
	if config.Output.Summary {
		reporters = append(reporters, report.NewSummaryReporter(config.MConfig, appLogger))
	}

	// Operator input, one line per menu choice
	inputCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- strings.TrimSpace(scanner.Text())
		}
		close(inputCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	app := &App{
		Config:    config,
		Logger:    appLogger,
		DB:        db,
		Ctrl:      ctrl,
		Agg:       agg,
		Catalog:   cat,
		Reporters: reporters,
		Input:     inputCh,
		Signals:   sigCh,
	}

	app.Run()
}

// -----------------------------------------------------------------------------
// App holds everything the menu loop needs.
// -----------------------------------------------------------------------------

type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        interfaces.IDatabase
	Ctrl      *session.Controller
	Agg       *analysis.RunAggregator
	Catalog   *catalog.Catalog
	Reporters []interfaces.IReporter
	Input     chan string
	Signals   chan os.Signal
}

// -----------------------------------------------------------------------------

func (a *App) Run() {
	for {
		a.printMenu()

		var choice string
		select {
		case line, ok := <-a.Input:
			if !ok {
				a.Logger.Info("Input closed, exiting")
				return
			}
			choice = strings.ToUpper(line)
		case <-a.Signals:
			a.Logger.Info("Interrupted, exiting without saving")
			return
		}

		switch choice {
		case "":
			continue

		case "1", "2", "3", "4", "5", "6", "7", "8":
			a.singleTest(choice)

		case "A":
			a.autoSequence()

		case "M":
			a.monitor()

		case "T":
			if err := a.Ctrl.Tare(); err != nil {
				a.Logger.Error("Tare failed: %v", err)
			}

		case "0":
			if err := a.Ctrl.SetHome(); err != nil {
				a.Logger.Error("Set home failed: %v", err)
			}

		case "H":
			if err := a.Ctrl.GoHome(); err != nil {
				a.Logger.Error("Go home failed: %v", err)
			}

		case "C":
			a.calibrate()

		case "X":
			if a.promptYesNo(fmt.Sprintf("Discard all %d recorded run(s)?", a.Agg.TotalRuns())) {
				a.Agg.Reset()
			}

		case "S":
			a.saveAll()
			return

		case "Q":
			if a.Agg.TotalRuns() > 0 &&
				!a.promptYesNo(fmt.Sprintf("Quit without saving %d recorded run(s)?", a.Agg.TotalRuns())) {
				continue
			}
			return

		default:
			fmt.Printf("Unknown choice %q\n", choice)
		}
	}
}

// -----------------------------------------------------------------------------

func (a *App) printMenu() {
	fmt.Println()
	fmt.Println("==================================================")
	fmt.Printf("  TENSIOMETER CONTROL   (%d run(s) recorded)\n", a.Agg.TotalRuns())
	fmt.Println("==================================================")
	for _, p := range a.Catalog.Profiles() {
		fmt.Printf("  %s - %s\n", p.ID, p.Description)
	}
	fmt.Println("  A - Run full automatic sequence")
	fmt.Println("  M - Live monitor (q to stop)")
	fmt.Println("  T - Tare load cell")
	fmt.Println("  0 - Set current position as home")
	fmt.Println("  H - Return to home position")
	fmt.Println("  C - Calibrate load cell")
	fmt.Println("  X - Clear recorded data")
	fmt.Println("  S - Save results and exit")
	fmt.Println("  Q - Quit without saving")
	fmt.Println("==================================================")
	fmt.Print("> ")
}

// -----------------------------------------------------------------------------

// runCancellable executes op with a context that is cancelled by Ctrl-C or by
// the operator typing q. Returns after op finishes.
func (a *App) runCancellable(op func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		input := a.Input
		for {
			select {
			case <-done:
				return
			case <-a.Signals:
				a.Logger.Info("Cancelling...")
				cancel()
			case line, ok := <-input:
				if !ok {
					// Stdin closed mid-operation; stop watching it and let
					// the operation run to completion.
					input = nil
					continue
				}
				if strings.EqualFold(strings.TrimSpace(line), "q") {
					a.Logger.Info("Cancelling...")
					cancel()
				}
			}
		}
	}()

	err := op(ctx)
	close(done)
	return err
}

// -----------------------------------------------------------------------------

func (a *App) singleTest(id string) {
	var outcome *session.TestOutcome

	err := a.runCancellable(func(ctx context.Context) error {
		var err error
		outcome, err = a.Ctrl.RunProfile(ctx, id)
		return err
	})
	if err != nil {
		a.Logger.Error("Test failed: %v", err)
		return
	}

	if outcome.Run != nil {
		fmt.Printf("\nRecorded %s: peak %.5f N, %d samples, %.1f s\n",
			outcome.Profile.Name, outcome.Run.PeakForce, len(outcome.Run.Samples), outcome.Run.Duration)
		return
	}

	if outcome.Warning != nil {
		a.Logger.Warning("%v", outcome.Warning)
		if len(outcome.Stream.Samples) > 0 &&
			a.promptYesNo(fmt.Sprintf("Keep the partial data (%d samples) anyway?", len(outcome.Stream.Samples))) {
			a.Ctrl.AcceptRun(outcome.Profile, outcome.Stream)
		} else if a.promptYesNo("Retry the test?") {
			a.singleTest(id)
		}
	}
}

// -----------------------------------------------------------------------------

func (a *App) autoSequence() {
	err := a.runCancellable(func(ctx context.Context) error {
		_, err := a.Ctrl.RunAutoSequence(ctx)
		return err
	})
	if err != nil {
		a.Logger.Error("Auto sequence failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (a *App) monitor() {
	fmt.Println("Monitoring live readings, q or Ctrl-C to stop")
	err := a.runCancellable(func(ctx context.Context) error {
		return a.Ctrl.MonitorMode(ctx)
	})
	if err != nil {
		a.Logger.Error("Monitor failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (a *App) calibrate() {
	err := a.runCancellable(func(ctx context.Context) error {
		return a.Ctrl.Calibrate(ctx)
	})
	if err != nil {
		a.Logger.Error("Calibration failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (a *App) saveAll() {
	aggs := a.Agg.Aggregates()
	if len(aggs) == 0 {
		a.Logger.Info("Nothing to save")
		return
	}

	stats := a.Agg.AllStatistics()

	if err := a.DB.SaveRuns(aggs); err != nil {
		a.Logger.Error("Failed to save runs: %v", err)
	}
	if err := a.DB.SaveStatistics(stats); err != nil {
		a.Logger.Error("Failed to save statistics: %v", err)
	}

	for _, r := range a.Reporters {
		if err := r.Write(aggs, stats); err != nil {
			a.Logger.Error("Reporter %s failed: %v", r.Name(), err)
		}
	}

	a.Logger.Info("Saved %d run(s) across %d profile(s)", a.Agg.TotalRuns(), len(aggs))
}

// -----------------------------------------------------------------------------

func (a *App) promptYesNo(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	select {
	case line, ok := <-a.Input:
		if !ok {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	case <-a.Signals:
		return false
	}
}
