package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/blang/semver"
	"github.com/esimov/geometrize"
	"github.com/esimov/geometrize/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┌┬┐┬─┐┬┌─┐┌─┐
│ ┬├┤ │ ││││├┤  │ ├┬┘│┌─┘├┤
└─┘└─┘└─┘┴ ┴└─┘ ┴ ┴└─┴└─┘└─┘

Recursive image partitioning filter.
    Version: %s

`

// Version indicates the current build version.
var Version = "1.0.0"

func main() {
	log.SetFlags(0)

	// The .env file is optional, the environment is used as it is when missing.
	_ = godotenv.Load()

	cfg, err := parseArgs(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}

	if cfg.version {
		fmt.Println(versionString(Version))
		return
	}

	logger := newLogger(cfg.trace)

	proc := cfg.processor()
	if cfg.trace {
		proc.Observer = geometrize.NewLogObserver(logger)
	}
	if term.IsTerminal(int(os.Stderr.Fd())) && !cfg.trace {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ GEOMETRIZE", utils.StatusMessage),
			utils.DecorateText("⇢ partitioning image...", utils.DefaultMessage),
		)
		proc.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*80, true)
	}

	op := &geometrize.Ops{
		Src:      cfg.source,
		Dst:      cfg.destination,
		PipeName: pipeName,
		Workers:  cfg.conc,
		Logger:   logger,
	}
	if err := proc.Execute(op); err != nil {
		log.Fatalf(
			utils.DecorateText("\nError geometrizing the image: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
	}
}

// newLogger returns the logger used for the diagnostics on the standard error.
func newLogger(trace bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)
	if trace {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// versionString formats the build version, which is expected to be a semantic version.
func versionString(v string) string {
	sv, err := semver.Parse(v)
	if err != nil {
		return fmt.Sprintf("geometrize %s (unreleased)", v)
	}
	return fmt.Sprintf("geometrize v%s", sv)
}
