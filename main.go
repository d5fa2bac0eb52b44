package main

import (
	"context"
	"emojiart-server/auth"
	"emojiart-server/config"
	"emojiart-server/core"
	"emojiart-server/editor"
	"emojiart-server/handlers/api/drawings"
	"emojiart-server/handlers/api/palette"
	"emojiart-server/handlers/websocket"
	authMiddleware "emojiart-server/middleware"
	"emojiart-server/stores"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

func allowLocalOrigin(r *http.Request, origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	switch parsed.Scheme {
	case "http", "https":
		switch parsed.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			return true
		}
	}
	return false
}

func setupRouter(ed *editor.Editor, hub *websocket.Hub, tokens *auth.Tokens) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowLocalOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/drawings", drawings.Routes(ed, authMiddleware.AuthJWT(tokens)))
		r.Get("/palette", palette.HandleGetPalette())
	})

	r.Get("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		rooms := hub.ActiveRooms()
		if rooms == nil {
			rooms = []core.Room{}
		}
		render.JSON(w, r, rooms)
	})

	return r
}

func waitForShutdown(srv *http.Server, hub *websocket.Hub) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	listenAddress := flag.String("listen", cfg.ListenAddress, "The address to listen on.")
	logLevel := flag.String("loglevel", cfg.LogLevel, "The log level (debug, info, warn, error).")
	issueToken := flag.String("issue-token", "", "Print a bearer token for the given subject and exit.")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of tokens printed by -issue-token.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	tokens := auth.New(cfg.JWTSecret)
	if *issueToken != "" {
		token, err := tokens.Issue(*issueToken, *tokenTTL)
		if err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}
	if !tokens.Enabled() {
		logrus.Warn("JWT_SECRET is not set. Drawing edits are not authenticated.")
	}

	hub := websocket.NewHub()
	ed := editor.New(stores.GetStore(cfg), hub)

	r := setupRouter(ed, hub, tokens)
	r.Mount("/socket.io/", hub.Server().ServeHandler(nil))

	srv := &http.Server{Addr: *listenAddress, Handler: r}

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, hub)
}
