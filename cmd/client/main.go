package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gorilla/websocket"

	"github.com/rustic-reach/reach/internal/client"
	"github.com/rustic-reach/reach/internal/config"
)

const defaultServerPort = "8080"

var (
	configPath string
	addr       string
)

func main() {
	flag.StringVar(&configPath, "c", "client.yml", "path to the client config file")
	flag.StringVar(&addr, "addr", "", "server address, overrides the config file")
	flag.Parse()

	logger := log.New(os.Stderr, "[reach] ", log.LstdFlags)

	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		logger.Fatal("config: ", err)
	}

	serverAddr := addr
	if serverAddr == "" {
		if cfg.DefaultServer == nil {
			logger.Fatal("no server address: pass -addr or configure default-server")
		}
		if !cfg.DefaultServer.AutoConnect {
			fmt.Println("[info] default server configured with auto-connect disabled, connecting anyway")
		}
		serverAddr = cfg.DefaultServer.ServerIP + ":" + defaultServerPort
	}

	wsURL := url.URL{Scheme: "ws", Host: serverAddr, Path: "/ws"}
	fmt.Printf("[info] connecting to %s ...\n", wsURL.String())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		logger.Fatal("connect: ", err)
	}

	if err := client.Authenticate(conn, cfg.UserToken, logger); err != nil {
		conn.Close()
		logger.Fatal("auth: ", err)
	}
	fmt.Println("[info] authenticated, type /help for commands, /exit to quit")

	rt := client.NewRuntime(conn, cfg, logger, os.Stdout)
	if err := rt.Run(os.Stdin); err != nil {
		logger.Fatal("session: ", err)
	}
}
