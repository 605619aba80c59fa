package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/okleong/campscore/internal/app"
	"github.com/okleong/campscore/internal/auth"
	"github.com/okleong/campscore/internal/config"
	"github.com/okleong/campscore/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// printBanner displays the CampScore logo
func printBanner() {
	logo := []string{
		`   ____                      ____                       `,
		`  / ___|__ _ _ __ ___  _ __/ ___|  ___ ___  _ __ ___   `,
		` | |   / _' | '_ ' _ \| '_ \___ \ / __/ _ \| '__/ _ \  `,
		` | |__| (_| | | | | | | |_) |__) | (_| (_) | | |  __/  `,
		`  \____\__,_|_| |_| |_| .__/____/ \___\___/|_|  \___|  `,
		`                      |_|                              `,
	}
	fmt.Println()
	for _, line := range logo {
		fmt.Printf("  %s%s%s\n", yellow, line, reset)
	}
	fmt.Println()
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	current := appLog.GetLevel()
	var next string

	switch current.String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sb%s      - Open scoreboard in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug, info, warn, error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `CampScore - Camp Competition Scoring

Usage:
  campscore [options]

Options:
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Configuration is read from CAMPSCORE_* environment variables and the
optional YAML file named by CAMPSCORE_CONFIG. Common settings:

  CAMPSCORE_ADDR                HTTP listen address (default ":8081")
  CAMPSCORE_DB_PATH             SQLite database path (default "campscore.db")
  CAMPSCORE_LOG_LEVEL           debug, info, warn, error (default "info")
  CAMPSCORE_ORGANIZER_PASSWORD  Organizer password (auto-generated if unset)

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("campscore %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	printBanner()

	// Setup organizer authentication
	password := cfg.OrganizerPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	organizerAuth := auth.New(password)

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	a, err := app.New(appLog, cfg, organizerAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	appLog.Info("Organizer password", "password", password)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run()
	}()

	boardURL := fmt.Sprintf("http://localhost%s/api/leaderboard", cfg.Addr)

	if !*noKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(boardURL, appLog)
	}

	if err := <-serverErr; err != nil {
		log.Fatal(err)
	}
}
