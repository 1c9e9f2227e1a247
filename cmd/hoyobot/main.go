package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoyobot/hoyobot-go/pkg/checkin"
	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/cookies"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
	"github.com/hoyobot/hoyobot-go/pkg/notify"
	"github.com/hoyobot/hoyobot-go/pkg/scheduler"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hoyobot <command> [args]")
		fmt.Println("Commands: run, onboard")
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		runCheckin(os.Args[2:])
	case "onboard":
		runOnboard(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func runCheckin(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	once := fs.Bool("once", false, "Run a single cycle and exit")
	fs.Parse(args)

	logging.Setup("logs")
	log := logging.WithComponent("main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("💥 Fatal config error")
		os.Exit(1)
	}
	logging.SetDebug(cfg.Settings.EnhancedLogging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Time("now", time.Now().UTC()).Msg("🌟 HoYoLAB auto check-in started")
	for _, game := range cfg.EnabledGames() {
		log.Info().Str("game", game.ShortName).Str("name", game.Name).Msg("game enabled")
	}

	notifier := notify.New(cfg.Notifications)
	runner := checkin.NewRunner(cfg, notifier)

	loopEnabled := cfg.IsLoopEnabled() && !*once
	if cfg.Settings.RunOnStart || !loopEnabled {
		success, _ := runner.Run(ctx)
		if !loopEnabled {
			if success {
				os.Exit(0)
			}
			os.Exit(1)
		}
	}

	loop := scheduler.New(cfg, runner)
	loop.Run(ctx)
	log.Info().Int("runs", loop.RunCount()).Msg("👋 shutting down")
}

func runOnboard(args []string) {
	fs := flag.NewFlagSet("onboard", flag.ExitOnError)
	configPath := fs.String("c", "", "Path to config file")
	fs.Parse(args)

	logging.Setup("logs")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	for _, game := range cfg.EnabledGames() {
		if err := cookies.CreateSample(game, cfg.Settings.Language); err != nil {
			fmt.Printf("Error creating cookie file for %s: %v\n", game.ShortName, err)
			continue
		}
		fmt.Printf("Cookie file ready: %s\n", game.CookieFile)
		for i, step := range cookies.SetupGuide(game, cfg.Settings.Language) {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}
	fmt.Println("Edit the cookie files above, then start with: hoyobot run")
}
