package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"goadmit/adapters/excel"
	"goadmit/adapters/jsondoc"
	"goadmit/adapters/postgres"
	"goadmit/app"
	"goadmit/domain/system"
	"goadmit/internal"
	"goadmit/internal/api"
	"goadmit/internal/config"
	"goadmit/ports"
)

func main() {
	// Load environment variables from .env file if present
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}
	if cfg.Paths.SystemFile == "" {
		logger.Error("GOADMIT_SYSTEM_FILE is required for the API server")
		os.Exit(1)
	}

	reader := readerFor(cfg.Paths.SystemFile)
	spec, err := reader.ReadSpec(cfg.Paths.SystemFile)
	if err != nil {
		logger.Error("failed to read system: %v", err)
		os.Exit(1)
	}
	sys, err := system.New(spec)
	if err != nil {
		logger.Error("invalid system: %v", err)
		os.Exit(1)
	}

	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		runs = postgres.NewRunRepository(db)
		logger.Info("run persistence enabled")
	}

	svc := app.NewService(reader, runs, logger)
	server := api.NewServer(svc, sys, spec, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("starting analysis API on %s (%d distinctions, %d interfaces)",
		addr, sys.Size(), len(sys.Interfaces()))
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}

// readerFor picks the spec reader by file extension: xlsx workbooks go
// through the excel adapter, everything else is treated as JSON.
func readerFor(path string) ports.SystemReader {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return excel.NewReader()
	}
	return jsondoc.NewReader()
}
