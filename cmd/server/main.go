package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/osenouci/tokenkeeper/internal/server"
	"github.com/osenouci/tokenkeeper/internal/server/config"
)

func main() {

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("failed to load the env file: %v", err)
			return
		}
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
