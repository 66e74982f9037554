package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moonwatch/config"
	"moonwatch/internal/api"
	"moonwatch/internal/collector"
	"moonwatch/internal/ephemeris"
	"moonwatch/internal/mqtt"
	"moonwatch/internal/storage"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "moonwatch",
		Short: "Moon visibility monitor",
		Long:  "A tool to track how long the moon is above the horizon each day, split by daylight and darkness",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newProvider(cfg *config.Config) (ephemeris.Provider, error) {
	return ephemeris.New(
		cfg.Provider.Name,
		cfg.Provider.APIKey,
		cfg.Provider.UserAgent,
		cfg.Location.Latitude,
		cfg.Location.Longitude,
		cfg.Provider.Timeout,
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring service",
		Long:  "Start the daily collector, API server, and MQTT publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return fmt.Errorf("failed to build ephemeris provider: %w", err)
			}

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			log.Printf("Database opened at %s", cfg.Database.Path)

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
			}

			coll := collector.NewCollector(collector.CollectorConfig{
				Provider:  provider,
				Database:  db,
				Publisher: publisher,
				Timezone:  cfg.Location.Timezone,
				Cron:      cfg.Collector.Cron,
				Enabled:   cfg.Collector.Enabled,
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				if err := coll.Start(ctx); err != nil {
					log.Printf("Collector error: %v", err)
				}
			}()

			if cfg.API.Enabled {
				server := api.NewServer(api.ServerConfig{
					Port:       cfg.API.Port,
					Collector:  coll,
					Database:   db,
					Config:     cfg,
					ConfigPath: configFile,
				})

				go func() {
					if err := server.Start(); err != nil {
						log.Printf("API server error: %v", err)
					}
				}()
			}

			log.Printf("Moonwatch started for %s (%s). Press Ctrl+C to stop.",
				cfg.Location.Name, cfg.Location.Timezone)

			<-sigChan
			log.Println("Shutting down...")
			cancel()
			coll.Stop()

			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a visibility report once",
		Long:  "Fetch event times, compute the day's moon visibility, and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return fmt.Errorf("failed to build ephemeris provider: %w", err)
			}

			coll := collector.NewCollector(collector.CollectorConfig{
				Provider: provider,
				Timezone: cfg.Location.Timezone,
			})

			day := time.Now()
			if dateStr != "" {
				loc, err := time.LoadLocation(cfg.Location.Timezone)
				if err != nil {
					return fmt.Errorf("unknown timezone %q", cfg.Location.Timezone)
				}
				parsed, err := time.ParseInLocation("2006-01-02", dateStr, loc)
				if err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", dateStr)
				}
				day = parsed.Add(12 * time.Hour)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			report, err := coll.ComputeReport(ctx, day)
			if err != nil {
				return fmt.Errorf("failed to compute report: %w", err)
			}

			output, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(output))

			return nil
		},
	}

	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "date to report on (YYYY-MM-DD, default today)")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the ephemeris provider",
		Long:  "Fetch today's event times from the configured provider and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			provider, err := newProvider(cfg)
			if err != nil {
				return fmt.Errorf("failed to build ephemeris provider: %w", err)
			}

			loc, err := time.LoadLocation(cfg.Location.Timezone)
			if err != nil {
				return fmt.Errorf("unknown timezone %q", cfg.Location.Timezone)
			}

			fmt.Printf("Testing provider %q for %s (%.4f, %.4f)...\n",
				cfg.Provider.Name, cfg.Location.Name, cfg.Location.Latitude, cfg.Location.Longitude)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			events, err := provider.Events(ctx, time.Now().In(loc), loc)
			if err != nil {
				fmt.Printf("Provider FAILED: %v\n", err)
				return err
			}

			fmt.Println("Provider SUCCESS!")
			fmt.Printf("\nEvent times for today:\n")
			fmt.Printf("  Sunrise:  %s\n", fmtEvent(events.Sunrise))
			fmt.Printf("  Sunset:   %s\n", fmtEvent(events.Sunset))
			fmt.Printf("  Moonrise: %s\n", fmtEvent(events.Moonrise))
			fmt.Printf("  Moonset:  %s\n", fmtEvent(events.Moonset))

			return nil
		},
	}
}

func fmtEvent(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}
