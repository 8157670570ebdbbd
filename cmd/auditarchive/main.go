// Package main exports the recent audit window to a compliance archive:
// a local directory by default, or S3 when a bucket is configured. Meant
// to run from cron.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"meridian/internal/archive"
	"meridian/internal/audit"
	"meridian/internal/notify"
	"meridian/internal/platform/config"
	"meridian/internal/platform/database"
	"meridian/internal/platform/logger"
)

func main() {
	resourceType := flag.String("resource-type", "", "Only archive entries for this resource type")
	since := flag.Duration("since", 24*time.Hour, "Archive entries newer than this")
	outDir := flag.String("out", "audit-archive", "Local output directory when no bucket is configured")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var sink audit.Sink
	if cfg.ExportBucket != "" {
		s3Sink, err := archive.NewS3Sink(cfg.AWSRegion, cfg.ExportBucket, cfg.ExportBucketPath,
			archive.WithS3Logger(log),
		)
		if err != nil {
			log.Error("s3 sink init failed", "error", err)
			os.Exit(1)
		}
		sink = s3Sink
		log.Info("archiving to s3", "bucket", cfg.ExportBucket)
	} else {
		sink = archive.NewFileSink(*outDir)
		log.Info("archiving to local directory", "dir", *outDir)
	}

	store := audit.NewPostgres(pool.DB())
	reader := audit.NewReader(store, notify.NewSlog(log), audit.WithReaderLogger(log))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	filter := audit.Filter{
		ResourceType: *resourceType,
		Start:        time.Now().Add(-*since),
	}
	if err := reader.Export(ctx, filter, sink); err != nil {
		log.Error("archive export failed", "error", err)
		os.Exit(1)
	}

	log.Info("archive export complete")
}
