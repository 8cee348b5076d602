package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"gitlab.com/servicemarket/marketplace-api/internal/config"
	"gitlab.com/servicemarket/marketplace-api/internal/errortracking"
	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/internal/validateargs"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

// loadEnvFile makes the variables of a .env file in the working directory
// visible to the flag parser. A missing file is not an error.
func loadEnvFile() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}
}

func initErrorReporting(cfg *config.Config) {
	err := errortracking.Initialize(cfg.Sentry.DSN, cfg.Sentry.Environment, fmt.Sprintf("%s-%s", VERSION, REVISION))
	if err != nil {
		log.WithError(err).Warn("Failed to initialize error reporting")
	}
}

func appMain() {
	if err := validateargs.Sensitive(os.Args[1:]); err != nil {
		log.WithError(err).Warn("Using sensitive arguments")
	}

	loadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	printVersion(cfg.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(cfg.Log.Format, cfg.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":     VERSION,
		"revision":    REVISION,
		"environment": cfg.General.Environment,
	}).Print("Marketplace API")

	config.LogConfig(cfg)
	initErrorReporting(cfg)

	if err := loadMIMETypes(); err != nil {
		fatal(err, "failed to load mime types")
	}

	a, err := newApp(cfg)
	if err != nil {
		fatal(err, "could not create app")
	}

	listeners, err := a.listen()
	if err != nil {
		fatal(err, "could not create listeners")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.serve(ctx, listeners); err != nil {
		fatal(err, "server stopped")
	}
}

func fatal(err error, message string) {
	errortracking.CaptureErrWithStackTrace(err, map[string]string{"message": message})
	log.WithError(err).Fatal(message)
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func main() {
	log.SetOutput(os.Stderr)

	metrics.MustRegister()

	appMain()
}
