package main

import (
	"context"
	"log"

	"github.com/Apurer/go-stock-gateway/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("stock gateway exited: %v", err)
	}
}
