package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustic-reach/reach/internal/api"
	"github.com/rustic-reach/reach/internal/config"
	"github.com/rustic-reach/reach/internal/server"
	"github.com/rustic-reach/reach/internal/stats"
)

var (
	configPath string
	addr       string
)

func main() {
	flag.StringVar(&configPath, "config", "server.yml", "path to the server config file")
	flag.StringVar(&addr, "addr", "", "listen address, overrides the config file")
	flag.Parse()

	logger := log.New(os.Stderr, "[reach] ", log.LstdFlags)

	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		logger.Fatal("config: ", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	registry := server.NewRegistry(cfg.Rooms.MaxRooms, cfg.DeleteEmptyRooms())
	chatServer, err := server.NewChatServer(logger, registry, statsUpdater, server.Options{
		DefaultRoomCapacity: cfg.Rooms.DefaultCapacity,
		WelcomeMessage:      cfg.Server.WelcomeMessage,
	})
	if err != nil {
		logger.Fatal("new chat server: ", err)
	}

	srv := api.NewServer(mux, logger, chatServer, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	logger.Printf("%s - %s", cfg.Server.Name, cfg.Server.Description)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
