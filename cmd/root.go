package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuist/podqueue/internal/config"
	"github.com/tuist/podqueue/internal/db"
	"github.com/tuist/podqueue/internal/engine"
	"github.com/tuist/podqueue/internal/episodes"
	"github.com/tuist/podqueue/internal/logger"
)

var (
	database     *sql.DB
	episodeStore *episodes.Store
	eng          *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "podqueue",
	Short: "podqueue maintains podcast playlists and the Up Next queue.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(logger.Config{
			Level:      cfg.Log.Level,
			OutputPath: cfg.Log.Path,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})

		database, err = db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		episodeStore = episodes.NewStore(database)
		eng, err = engine.New(database, episodeStore)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			database.Close()
		}
		logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
