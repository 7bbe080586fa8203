package main

import (
	"fmt"
	"log"
	"time"

	"github.com/noah-isme/edushare-client/internal/devserver"
	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/pkg/config"
	"github.com/noah-isme/edushare-client/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	srv := devserver.New(devserver.Config{
		JWTSecret: cfg.Dev.JWTSecret,
		TokenTTL:  cfg.Dev.TokenTTL,
	}, logr)

	seed(srv)

	addr := fmt.Sprintf(":%d", cfg.Dev.Port)
	logr.Sugar().Infow("dev server starting", "addr", addr)
	if err := srv.Router().Run(addr); err != nil {
		logr.Sugar().Fatalw("dev server failed", "error", err)
	}
}

func seed(srv *devserver.Server) {
	admin, _ := srv.Account("admin")
	now := time.Now().UTC()

	fixtures := []models.Document{
		{Title: "Algorithmique — TD1", Type: models.TypeTD, Subject: "Algorithmique", Description: "Complexité et récurrences", CreatedAt: now.Add(-72 * time.Hour)},
		{Title: "Réseaux — TP1", Type: models.TypeTP, Subject: "Réseaux", Description: "Adressage IP", CreatedAt: now.Add(-48 * time.Hour)},
		{Title: "Bases de données — Cours 3", Type: models.TypeCours, Subject: "Bases de données", Description: "Normalisation", CreatedAt: now.Add(-24 * time.Hour)},
	}
	for _, doc := range fixtures {
		doc.UploadedBy = &models.Uploader{ID: admin.ID, Username: admin.Username}
		srv.SeedDocument(doc, []byte("fixture content"))
	}
}
