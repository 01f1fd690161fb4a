package main

import (
	"context"
	"log"

	"portfolio-notes-be/internal/bootstrap"
	"portfolio-notes-be/internal/config"
	"portfolio-notes-be/internal/server"
	"portfolio-notes-be/internal/tracer"
	"portfolio-notes-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	if err := container.ActivityService.Consume(context.Background()); err != nil {
		log.Printf("Background activity consumer error: %v", err)
	}

	// 5. Initialize and run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
