package main

import (
	"context"
	"log"

	"ai-guidance-be/internal/bootstrap"
	"ai-guidance-be/internal/config"
	"ai-guidance-be/internal/server"
	"ai-guidance-be/internal/tracer"
)

func main() {
	// 1. Initialize OpenTelemetry tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Build Dependency Container
	container := bootstrap.NewContainer(cfg)
	defer container.SysLogger.Sync()

	if container.NatsPub != nil {
		defer container.NatsPub.Close()
	}

	// 4. Start background turn-analytics consumer
	go func() {
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("[ERROR] Turn analytics consumer stopped: %v", err)
		}
	}()

	// 5. Run HTTP Server
	srv := server.New(cfg, container)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
