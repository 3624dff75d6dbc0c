package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hamid659/csv-import/internal/config"
	"github.com/hamid659/csv-import/internal/fetch"
	"github.com/hamid659/csv-import/internal/pipeline"
	"github.com/hamid659/csv-import/internal/playlog"
	"github.com/hamid659/csv-import/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "csv-import",
	Short:         "Radio-airplay log importer",
	Long:          "csv-import fetches a delimited radio-airplay log, validates and deduplicates it, and persists songs and reconciled artist identities into a relational store.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("csv-import", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/csv-import/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the source URL and database connection.")
		return nil
	},
}

// --- initdb command ---

var recreate bool

var initDBCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the artists and songs tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg)
		if err != nil {
			log.Printf("Error connecting to the database: %v", err)
			return err
		}
		defer closeStore(st)

		if recreate {
			log.Print("Dropping existing tables...")
			if err := st.DropTables(); err != nil {
				log.Printf("Error dropping existing tables: %v", err)
				return err
			}
		}

		if err := st.CreateTables(); err != nil {
			log.Printf("Error creating tables: %v", err)
			return err
		}
		fmt.Println("Tables created.")
		return nil
	},
}

func init() {
	initDBCmd.Flags().BoolVar(&recreate, "recreate", false, "Drop existing tables before recreating them")
}

// --- import command ---

var (
	importURL        string
	removeDuplicates bool
	preAnalysis      bool
	badDataMode      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Fetch the airplay log and import it",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flags override the import section of the config.
		if cmd.Flags().Changed("url") {
			cfg.Import.URL = importURL
		}
		if cmd.Flags().Changed("remove-duplicates") {
			cfg.Import.RemoveDuplicates = removeDuplicates
		}
		if cmd.Flags().Changed("pre-analysis") {
			cfg.Import.PreAnalysis = preAnalysis
		}
		if cmd.Flags().Changed("bad-data") {
			if badDataMode != config.BadDataReport && badDataMode != config.BadDataInsert {
				return fmt.Errorf("invalid --bad-data mode %q (want %q or %q)",
					badDataMode, config.BadDataReport, config.BadDataInsert)
			}
			cfg.Import.BadData = badDataMode
		}
		if cfg.Import.URL == "" {
			return errors.New("no URL configured; set import.url or pass --url")
		}

		st, err := store.Open(cfg)
		if err != nil {
			log.Printf("Error connecting to the database: %v", err)
			return err
		}
		defer closeStore(st)

		result, err := pipeline.New(cfg, st).Run()
		if err != nil {
			logRunError(err)
			return err
		}

		fmt.Println("\nImport complete:")
		fmt.Printf("  Rows read: %d\n", result.TotalRows)
		fmt.Printf("  Valid: %d\n", result.ValidRows)
		fmt.Printf("  Malformed: %d\n", result.MalformedRows)
		fmt.Printf("  Duplicates: %d\n", result.DuplicatesFound)
		if result.PreAnalysis {
			fmt.Println("  Pre-analysis only; nothing persisted.")
			return nil
		}
		if result.Reconciled != nil {
			fmt.Printf("  Artists: %d distinct (%d new)\n",
				result.Reconciled.DistinctArtists, result.Reconciled.ArtistsCreated)
			fmt.Printf("  Songs inserted: %d\n", result.Reconciled.SongsInserted)
			if result.Reconciled.SongsSkipped > 0 {
				fmt.Printf("  Songs skipped: %d\n", result.Reconciled.SongsSkipped)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "Raw URL of the airplay log")
	importCmd.Flags().BoolVar(&removeDuplicates, "remove-duplicates", false, "Remove duplicated ids instead of only reporting them")
	importCmd.Flags().BoolVar(&preAnalysis, "pre-analysis", false, "Only perform validation and duplicate reporting")
	importCmd.Flags().StringVar(&badDataMode, "bad-data", "", `How to handle malformed rows: "report" or "insert"`)
}

// logRunError logs a run-fatal error with context matching its kind. Only
// the known taxonomy gets special wording; anything else was already wrapped
// on its way up.
func logRunError(err error) {
	var fetchErr *fetch.Error
	var headerErr *playlog.HeaderError
	var storeErr *store.Error

	switch {
	case errors.As(err, &fetchErr):
		log.Printf("Error fetching airplay log: %v", err)
	case errors.Is(err, playlog.ErrEmptyInput):
		log.Print("The source file is empty.")
	case errors.As(err, &headerErr):
		log.Printf("Unexpected header format: %v", headerErr.Got)
	case errors.As(err, &storeErr):
		log.Printf("Database error: %v", err)
	default:
		log.Printf("Import failed: %v", err)
	}
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		artists, songs, err := st.Counts()
		if err != nil {
			return fmt.Errorf("getting counts: %w", err)
		}

		fmt.Printf("Database: %s\n\n", cfg.Database.Driver)
		fmt.Printf("Artists: %d\n", artists)
		fmt.Printf("Songs: %d\n", songs)
		return nil
	},
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
		return
	}
	log.Print("Database connection closed.")
}
