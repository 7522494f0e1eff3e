// Command typerace starts the typing race coordination server.
//
// The default mode runs the HTTP server exposing the WebSocket endpoint
// players connect to, the REST observer API, the static web client, and an
// /mcp HTTP endpoint. The "mcp" subcommand runs an MCP stdio server that
// proxies tool calls to a running HTTP server, starting an internal one if
// none is reachable.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/keystroke-games/typerace/api"
	"github.com/keystroke-games/typerace/game/config"
	"github.com/keystroke-games/typerace/game/identity"
	"github.com/keystroke-games/typerace/game/passage"
	"github.com/keystroke-games/typerace/game/rooms"
	"github.com/keystroke-games/typerace/game/service"
	"github.com/keystroke-games/typerace/transport/mcp"
	"github.com/keystroke-games/typerace/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "TypeRace Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cmd := &cli.Command{
		Name:    "typerace",
		Usage:   "realtime multiplayer typing race server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides settings file and environment",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "path to a JSON settings file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "expose the server through an ngrok tunnel",
			},
			&cli.StringFlag{
				Name:  "ngrok-auth",
				Usage: "ngrok auth token (or use NGROK_AUTHTOKEN env var)",
			},
			&cli.StringFlag{
				Name:  "ngrok-domain",
				Usage: "custom ngrok domain (optional)",
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server proxying the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Value: "http://localhost:8080",
						Usage: "base URL of a running HTTP server to proxy",
					},
				},
				Action: runStdioMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// runServer starts the HTTP server with the WebSocket endpoint, REST API,
// static client, and an /mcp proxy endpoint. If ngrok is enabled it also
// provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	settings, err := config.Load(cmd.String("settings"))
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if addr := cmd.String("addr"); addr != "" {
		settings.Addr = addr
	}

	log.Printf("Starting %s v%s on %s", AppName, Version, settings.Addr)

	raceService, store := initializeServices(settings)

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	wsRouter := websocket.NewRouter(raceService, hub)
	apiServer := api.NewServer(raceService, hub, wsRouter, settings.StaticDir)

	// Reap rooms nobody has touched for a while
	go roomCleanupRoutine(store, settings.RoomIdleTimeout)

	// Create MCP client for the /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", listenHost(settings.Addr))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         settings.Addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", settings.Addr)
		log.Printf("WebSocket: ws://%s/ws", listenHost(settings.Addr))
		log.Printf("REST API: %s/api", baseURL)
		log.Printf("MCP endpoint: %s/mcp", baseURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Start ngrok tunnel if enabled (flag or environment)
	ngrokShouldRun := cmd.Bool("ngrok")
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(runCtx, cmd, mainRouter)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// initializeServices wires the room store, nickname registry, passage
// provider and race service.
func initializeServices(settings config.Settings) (service.RaceService, *rooms.Store) {
	store := rooms.NewStore(settings.RoomCodeLength)
	registry := identity.NewRegistry()
	provider := passage.NewHTTPProvider(settings.PassageURL, settings.PassageTimeout)

	return service.NewRaceService(store, registry, provider), store
}

// roomCleanupRoutine periodically removes rooms that have seen no activity
// within the retention window.
func roomCleanupRoutine(store *rooms.Store, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for range ticker.C {
		removed := store.CleanupIdleRooms(maxIdle)
		if removed > 0 {
			log.Printf("Cleaned up %d idle rooms", removed)
		}
	}
}

// mcpHandler serves MCP-over-HTTP by handing each JSON-RPC message to the
// embedded MCP server.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrokTunnel provisions a public tunnel and serves the main router
// through it until the context is cancelled.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	domain := cmd.String("ngrok-domain")
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  Game UI (ngrok): %s/", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It proxies to the API server at
// --api-url when one is reachable, otherwise it starts an internal HTTP
// server bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	externalURL := cmd.String("api-url")
	log.Printf("Checking for API server at %s...", externalURL)

	var baseURL string

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		raceService, store := initializeServices(config.Default())

		hub := websocket.NewHub()
		go hub.Run()
		go roomCleanupRoutine(store, config.Default().RoomIdleTimeout)

		wsRouter := websocket.NewRouter(raceService, hub)
		apiServer := api.NewServer(raceService, hub, wsRouter, "")

		httpServer := &http.Server{Handler: apiServer}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Give the listener a moment before the first tool call
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Printf("MCP stdio server ready (API at %s)", baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// listenHost normalizes a listen address like ":8080" into a dialable host.
func listenHost(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
