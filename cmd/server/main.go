package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jengzang/coolparks-go/internal/api"
	"github.com/jengzang/coolparks-go/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}
