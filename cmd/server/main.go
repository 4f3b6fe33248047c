package main

import (
	"context"
	"log"

	"github.com/Ak2k04/Life-Tracker/internal/server"
	"github.com/Ak2k04/Life-Tracker/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
