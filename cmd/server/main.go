package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"deepwarren/server/internal/app"
)

func main() {
	tuningPath := flag.String("tuning", "tuning.yaml", "path to the runtime tuning file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{TuningPath: *tuningPath}); err != nil {
		log.Fatalf("%v", err)
	}
}
