package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/bootstrap"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/config"
	"github.com/noah-isme/abs-dashboard-api/pkg/logger"
)

func main() {
	var (
		collection string
		timeout    time.Duration
	)
	flag.StringVar(&collection, "collection", models.CollectionStudents, "Collection to back-fill, or \"all\"")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open document store", zap.Error(err))
	}
	defer store.Close(context.Background()) //nolint:errcheck

	documents := service.NewDocumentService(store.Documents, nil, nil, logr, service.DocumentServiceConfig{})

	targets := []string{collection}
	if collection == models.FilterAll {
		targets = models.Collections
	}
	for _, name := range targets {
		report, err := documents.BackfillCreatedAt(ctx, name)
		if err != nil {
			logr.Error("back-fill failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		fmt.Printf("%s: Back-filled createdAt on %d of %d docs\n", report.Collection, report.Updated, report.Total)
	}
}
