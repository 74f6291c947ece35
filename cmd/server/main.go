package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/eco-monitor/internal/auth"
	"github.com/ukydev/eco-monitor/internal/config"
	"github.com/ukydev/eco-monitor/internal/db"
	"github.com/ukydev/eco-monitor/internal/events"
	"github.com/ukydev/eco-monitor/internal/handlers"
	"github.com/ukydev/eco-monitor/internal/middleware"
	"github.com/ukydev/eco-monitor/internal/models"
)

func main() {
	cfg := config.Load()

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database("eco_monitor")
	locations := &db.MongoLocationCollection{Collection: database.Collection("locations")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	companies := &db.MongoCompanyCollection{Collection: database.Collection("companies")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	// The server stays up without a broker; clients just see no live
	// updates until it returns.
	var publisher handlers.Publisher
	if pub, err := events.NewPublisher(cfg.BrokerURL); err != nil {
		log.WithError(err).Warn("Broker unreachable, running without event broadcasts")
	} else {
		publisher = pub
		defer pub.Close()
	}

	authHandler := handlers.NewAuthHandler(authService, users, companies)
	locationHandler := handlers.NewLocationHandler(locations, publisher)
	containerHandler := handlers.NewContainerHandler(locations, publisher)
	userHandler := handlers.NewUserHandler(authService, users)
	companyHandler := handlers.NewCompanyHandler(companies)

	authMW := middleware.NewAuthMiddleware(authService, users)
	rateLimiter := middleware.NewRateLimitMiddleware()

	requireCap := func(c models.Capability, h http.HandlerFunc) http.Handler {
		return authMW.RequireCapability(c)(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	mux.HandleFunc("GET /api/locations", locationHandler.List)
	mux.HandleFunc("GET /api/locations/{id}", locationHandler.Get)
	mux.Handle("POST /api/locations", requireCap(models.CanCreateLocations, locationHandler.Create))
	mux.Handle("PUT /api/locations/{id}", requireCap(models.CanEditLocations, locationHandler.Update))
	mux.Handle("DELETE /api/locations/{id}", requireCap(models.CanDeleteLocations, locationHandler.Delete))
	mux.Handle("POST /api/locations/{id}/collect", requireCap(models.CanEditLocations, locationHandler.Collect))

	mux.Handle("POST /api/containers", requireCap(models.CanCreateContainers, containerHandler.Create))
	mux.Handle("PUT /api/containers/{id}", requireCap(models.CanEditContainers, containerHandler.Update))
	mux.Handle("DELETE /api/containers/{id}", requireCap(models.CanDeleteContainers, containerHandler.Delete))

	mux.Handle("GET /api/users", requireCap(models.CanManageUsers, userHandler.List))
	mux.Handle("GET /api/users/company", requireCap(models.CanManageUsers, userHandler.ListCompany))
	mux.Handle("GET /api/users/{id}", requireCap(models.CanManageUsers, userHandler.Get))
	mux.Handle("POST /api/users", requireCap(models.CanManageUsers, userHandler.Create))
	mux.Handle("PUT /api/users/{id}", requireCap(models.CanManageUsers, userHandler.Update))
	mux.Handle("DELETE /api/users/{id}", requireCap(models.CanManageUsers, userHandler.Delete))
	mux.HandleFunc("GET /api/roles", userHandler.Roles)

	mux.HandleFunc("GET /api/companies", companyHandler.List)
	mux.HandleFunc("GET /api/companies/{id}", companyHandler.Get)
	mux.HandleFunc("POST /api/companies", companyHandler.Create)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := rateLimiter.RateLimit(100, 60)(authMW.Authenticate(mux))

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
