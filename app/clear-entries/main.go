// Command clear-entries empties the entries collection of a running server
// in paced batches, the same way the admin page's "Clear All" button does.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/outreach/internal/workers"
)

type cliConfig struct {
	BaseURL    string        `env:"OUTREACH_BASE_URL" envDefault:"http://localhost:8080"`
	Token      string        `env:"OUTREACH_ADMIN_TOKEN,required"`
	BatchSize  int           `env:"CLEAR_BATCH_SIZE" envDefault:"100"`
	MaxBatches int           `env:"CLEAR_MAX_BATCHES" envDefault:"50"`
	Delay      time.Duration `env:"CLEAR_DELAY" envDefault:"1s"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		log.WithError(err).Fatal("config error")
	}

	flag.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "server base URL")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "entries per batch (1-200)")
	flag.IntVar(&cfg.MaxBatches, "max-batches", cfg.MaxBatches, "stop after this many batches")
	flag.DurationVar(&cfg.Delay, "delay", cfg.Delay, "pause between batches")
	flag.Parse()

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &workers.ClearAllRunner{
		Deleter:    workers.NewHTTPBatchDeleter(cfg.BaseURL, cfg.Token),
		BatchSize:  cfg.BatchSize,
		Delay:      cfg.Delay,
		MaxBatches: cfg.MaxBatches,
		Logger:     log,
		OnBatch: func(p workers.ClearProgress) {
			log.WithFields(logrus.Fields{
				"batch":         p.Batch,
				"deleted":       p.DeletedCount,
				"total_deleted": p.TotalDeleted,
				"has_more":      p.HasMoreEntries,
			}).Info("batch deleted")
		},
	}

	res, err := runner.Run(ctx)
	if err != nil {
		log.WithError(err).WithField("deleted", res.Deleted).Error("clear all failed")
		os.Exit(1)
	}
	if res.Partial {
		msg := "entries remain after the batch limit, run again to continue"
		if res.Stalled {
			msg = "a batch deleted nothing while entries remain, check the entries collection"
		}
		log.WithField("deleted", res.Deleted).Warn(msg)
		os.Exit(2)
	}
}
