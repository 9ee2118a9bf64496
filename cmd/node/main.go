package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abusesystem/backend/internal/config"
	"github.com/abusesystem/backend/internal/fleet"
	"github.com/abusesystem/backend/internal/handlers"
	appMiddleware "github.com/abusesystem/backend/internal/middleware"
	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/pubsub"
	"github.com/abusesystem/backend/internal/services"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shared ledgers in Mongo; every fleet node points at the same backend.
	userService, err := services.NewMongoUserService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo users init failed: %v", err)
	}
	pointsService, err := services.NewMongoPointsService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo points init failed: %v", err)
	}
	templateService, err := services.NewMongoTemplateService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo templates init failed: %v", err)
	}
	punishmentService, err := services.NewMongoPunishmentService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo punishments init failed: %v", err)
	}
	messageService, err := services.NewMongoMessageService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo messages init failed: %v", err)
	}
	if err := messageService.Seed(ctx, models.DefaultMessages); err != nil {
		log.Printf("Warning: message seeding failed: %v", err)
	}

	// Fleet propagation channel.
	channel, err := pubsub.NewRedisChannel(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis channel init failed: %v", err)
	}

	staffService := services.NewStaffService()
	punisher := services.NewPunishmentService(userService, pointsService, templateService, punishmentService, channel)

	// Local sessions, fed by the host runtime.
	registry := fleet.NewRegistry()
	notifier := fleet.NewNotifier(registry, userService, messageService)
	applier := fleet.NewApplier(registry, userService, punishmentService, messageService, notifier)

	// Subscribe for the life of the process. A dropped subscription is
	// re-established; while disconnected the connect-time check still holds.
	go func() {
		for {
			err := channel.Subscribe(context.Background(), func(e pubsub.Event) {
				applier.HandleEvent(context.Background(), e)
			})
			log.Printf("[pubsub] subscription ended: %v, retrying", err)
			time.Sleep(5 * time.Second)
		}
	}()

	authHandler := handlers.NewAuthHandler(staffService, cfg.JWTSecret, cfg.JWTExpiration)
	punishHandler := handlers.NewPunishHandler(punisher, staffService, userService, pointsService, templateService, punishmentService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Get("/auth/profile", authHandler.GetProfile)

			r.Post("/punish", punishHandler.Punish)
			r.Get("/reasons", punishHandler.ListReasons)
			r.Route("/players/{name}", func(r chi.Router) {
				r.Get("/punishments", punishHandler.ListPunishments)
				r.Get("/points", punishHandler.GetPoints)
			})
		})
	})

	log.Printf("abusesystem node %s listening on %s", cfg.NodeName, cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
