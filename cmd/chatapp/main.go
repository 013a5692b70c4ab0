package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/indra210595/chat-app/internal/auth"
	"github.com/indra210595/chat-app/internal/chat"
	"github.com/indra210595/chat-app/internal/config"
	"github.com/indra210595/chat-app/internal/domain"
	"github.com/indra210595/chat-app/internal/groups"
	"github.com/indra210595/chat-app/internal/messages"
	"github.com/indra210595/chat-app/internal/presence"
	"github.com/indra210595/chat-app/internal/storage/postgres"
	"github.com/indra210595/chat-app/internal/storage/sqlite"
	"github.com/indra210595/chat-app/internal/users"
)

func main() {
	migrate := flag.Bool("migrate", false, "run migrations and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}
	cfg := config.MustLoad()

	var (
		messageStore domain.MessageStore
		groupStore   domain.GroupStore
		userStore    domain.UserStore
	)

	switch cfg.DBDriver {
	case "postgres":
		conn, err := postgres.New(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer conn.Db.Close()
		if *migrate {
			if err := conn.Migrate(); err != nil {
				log.Fatalf("migration failed: %v", err)
			}
			slog.Info("migration completed")
			return
		}
		st := conn.Stores()
		messageStore, groupStore, userStore = st, st, st
	default:
		conn, err := sqlite.New(cfg.SQLiteDSN)
		if err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer conn.Db.Close()
		if *migrate {
			if err := conn.Migrate(); err != nil {
				log.Fatalf("migration failed: %v", err)
			}
			slog.Info("migration completed")
			return
		}
		st := conn.Stores()
		messageStore, groupStore, userStore = st, st, st
	}

	hub := chat.NewHub(slog.Default(), messageStore, groupStore)

	r := gin.Default()

	public := r.Group("/api/auth")
	users.RegisterPublic(public, userStore, cfg)

	authed := r.Group("/api", auth.JWTMiddleware(cfg.JWTSecret))
	users.RegisterAuthed(authed.Group("/auth"), userStore)
	messages.Register(authed, messageStore, groupStore, hub)
	groups.Register(authed, groupStore, hub)
	presence.Register(authed, hub)

	ws := r.Group("/")
	chat.RegisterWS(ws, hub, cfg.JWTSecret)

	slog.Info("server listening", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
