package main

import (
	"fmt"
	"os"

	"github.com/mrhexvel/ezgu/internal/config"
	"github.com/mrhexvel/ezgu/internal/database"
	"github.com/mrhexvel/ezgu/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
	db         *gorm.DB
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.db = cfg, log, db
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	boot, err := config.ParseBootstrap()
	if err == nil {
		a.configPath = boot.ConfigPath
	}

	serve := newServeCommand(a)
	cmd := &cobra.Command{
		Use:                "server",
		Short:              "Volunteer coordination API",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               serve.RunE,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", a.configPath, "path to the YAML config file (env CONFIG_PATH)")

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newSeedCommand(a))
	cmd.AddCommand(newReconcileCommand(a))
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
