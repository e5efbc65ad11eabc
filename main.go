package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupCommands() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cyclingdash",
		Short: "Cycling team performance dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the demo ride CSV into the data dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.DataDir, "sample_cycling.csv")
			if err := WriteSampleCSV(path); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sampleCmd)
	return rootCmd
}

func runServe() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SeedNews(); err != nil {
		return err
	}

	data, err := bootDataset(cfg, store, log)
	if err != nil {
		return err
	}

	samplePath := filepath.Join(cfg.DataDir, "sample_cycling.csv")
	if _, err := os.Stat(samplePath); err == nil {
		stop, werr := data.WatchSampleFile(samplePath, NewLoader(cfg.Aliases), log)
		if werr != nil {
			log.Warn("Sample watch disabled", zap.Error(werr))
		} else {
			defer stop()
		}
	}

	srv := NewServer(log, cfg, store, data)
	log.Info("Dashboard listening", zap.String("addr", cfg.Addr))
	return http.ListenAndServe(cfg.Addr, srv.Routes())
}

// bootDataset serves, in order of preference: the persisted snapshot from
// the last upload, the sample CSV in the data dir, or the generated demo
// dataset.
func bootDataset(cfg Config, store *Store, log *zap.Logger) (*Dataset, error) {
	rides, err := store.LoadRides()
	if err != nil {
		return nil, err
	}
	if len(rides) > 0 {
		log.Info("Restored dataset from store", zap.Int("rides", len(rides)))
		return NewDataset(rides, "store"), nil
	}

	samplePath := filepath.Join(cfg.DataDir, "sample_cycling.csv")
	if raw, rerr := os.ReadFile(samplePath); rerr == nil {
		if loaded, lerr := NewLoader(cfg.Aliases).Load(raw, samplePath, "text/csv"); lerr == nil {
			log.Info("Loaded sample data", zap.String("path", samplePath), zap.Int("rides", len(loaded)))
			return NewDataset(loaded, "sample"), nil
		} else {
			log.Warn("Could not load sample data", zap.String("path", samplePath), zap.Error(lerr))
		}
	}

	rides = GenerateSampleRides()
	log.Info("Using generated demo dataset", zap.Int("rides", len(rides)))
	return NewDataset(rides, "sample"), nil
}

func main() {
	if err := setupCommands().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
