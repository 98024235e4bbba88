package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/tenancy/internal/orgs/app"
	"github.com/spf13/pflag"
)

func main() {
	var envFile string
	var migrateOnly bool

	flagSet := pflag.NewFlagSet("orgs", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default: ./.env if present)")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "apply database migrations and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: orgs [flags]\n\nOrganization access and invitation service. Configuration is read from\nthe environment; see ORGS_* variables.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := app.LoadEnvFile(envFile); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}
	cfg := app.LoadConfig()

	if migrateOnly {
		if err := app.Migrate(cfg); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
