package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/eco-monitor/internal/app"
	"github.com/ukydev/eco-monitor/internal/config"
	"github.com/ukydev/eco-monitor/internal/views"
)

// Terminal monitoring client: restores a persisted session (or logs in with
// MONITOR_EMAIL/MONITOR_PASSWORD), prints the fleet and then follows live
// updates and connectivity transitions until interrupted.
func main() {
	cfg := config.Load()

	a, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize")
	}
	defer a.Close()

	ctx := context.Background()

	if err := a.Restore(ctx); err != nil {
		log.WithError(err).Fatal("Failed to restore session")
	}
	if !a.Session.IsAuthenticated() {
		email := os.Getenv("MONITOR_EMAIL")
		password := os.Getenv("MONITOR_PASSWORD")
		if email == "" || password == "" {
			log.Fatal("No persisted session; set MONITOR_EMAIL and MONITOR_PASSWORD to log in")
		}
		if err := a.Login(ctx, email, password); err != nil {
			log.WithError(err).Fatal("Login failed")
		}
	}

	user := a.Session.User()
	log.WithFields(log.Fields{
		"email":      user.Email,
		"role":       user.Role,
		"company_id": user.CompanyID,
	}).Info("Session established")

	if err := a.Session.Validity(); err != nil {
		log.WithError(err).Warn("Access token not valid; requests may be rejected")
	}

	snapshot := a.Fleet.Snapshot()
	partition := views.PartitionByStatus(snapshot)
	log.WithFields(log.Fields{
		"locations":     len(snapshot),
		"full":          len(partition.Full),
		"partial":       len(partition.Partial),
		"empty":         len(partition.Empty),
		"notifications": views.NotificationCount(snapshot),
	}).Info("Fleet loaded")

	if center, ok := views.MapCenter(snapshot); ok {
		log.WithFields(log.Fields{"lat": center.Lat, "lng": center.Lng}).Info("Map center")
	}

	stop := a.WatchConnectivity(func(online bool) {
		if online {
			log.Info("Event channel online")
		} else {
			log.Warn("Event channel offline")
		}
	})
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	summary := views.Summarize(a.Fleet.Snapshot())
	log.WithFields(log.Fields{
		"containers":        summary.TotalContainers,
		"full":              summary.FullContainers,
		"empty":             summary.EmptyContainers,
		"average_fill_rate": summary.AverageFillRate,
	}).Info("Shutting down")
}
