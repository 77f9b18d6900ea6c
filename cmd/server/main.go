package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bignyap/cloud-uploader/config"
	"github.com/bignyap/cloud-uploader/handler"
	logapi "github.com/bignyap/cloud-uploader/logger/api"
	logconfig "github.com/bignyap/cloud-uploader/logger/config"
	logfactory "github.com/bignyap/cloud-uploader/logger/factory"
	"github.com/bignyap/cloud-uploader/server"
	storagefactory "github.com/bignyap/cloud-uploader/storage/factory"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logfactory.NewLogger(logconfig.LogConfig{
		Level:       cfg.Service.LogLevel,
		Format:      cfg.Service.LogFormat,
		Environment: cfg.Service.Environment,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logfactory.SetGlobalLogger(log)

	dispatcher, err := storagefactory.NewDispatcher(&cfg.Backends, log)
	if err != nil {
		log.Fatal(ctx, "Failed to build storage dispatcher", err)
	}

	log.WithFields(
		logapi.Any("backends", dispatcher.Backends()),
	).Info(ctx, "Storage backends registered")

	srvCfg := server.DefaultConfig()
	srvCfg.Port = cfg.Service.Port
	srvCfg.Environment = cfg.Service.Environment
	srvCfg.Version = cfg.Service.Version

	h := handler.NewUploadHandler(log, dispatcher, &cfg.Backends)

	s := server.NewHTTPServer(
		srvCfg,
		server.WithLogger(log),
		server.WithHandler(h),
	)

	if err := s.Start(); err != nil {
		log.Fatal(ctx, "Server failed", err)
	}
}
