package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/eco-monitor/internal/api"
	"github.com/ukydev/eco-monitor/internal/config"
	"github.com/ukydev/eco-monitor/internal/models"
)

// Cities used as anchors for generated locations
var cities = []struct {
	name string
	lat  float64
	lng  float64
}{
	{"London", 51.5074, -0.1278},
	{"Madrid", 40.4168, -3.7038},
	{"Paris", 48.8566, 2.3522},
	{"Berlin", 52.5200, 13.4050},
	{"Istanbul", 41.0082, 28.9784},
	{"Nicosia", 35.1856, 33.3823},
	{"Cardiff", 51.4816, -3.1791},
	{"Toronto", 43.6532, -79.3832},
}

func jitter(base, meters float64, metersPerDeg float64) float64 {
	return base + (rand.Float64()*2-1)*(meters/metersPerDeg)
}

func randomSite(i int) models.Location {
	city := cities[rand.Intn(len(cities))]
	lonMetersPerDeg := 111320.0 * math.Cos(city.lat*math.Pi/180)
	containers := make([]models.Container, 1+rand.Intn(4))
	for j := range containers {
		containers[j] = models.Container{
			Number:    j + 1,
			FillLevel: rand.Float64() * 40,
		}
	}
	return models.Location{
		Name:       fmt.Sprintf("%s collection point %d", city.name, i+1),
		Address:    fmt.Sprintf("%s, site %d", city.name, i+1),
		Lat:        jitter(city.lat, 800, 111320.0),
		Lng:        jitter(city.lng, 800, lonMetersPerDeg),
		Containers: containers,
	}
}

// simulateLocation drifts every container's fill level upward each tick and
// registers a collection when the site fills up, so the dashboard sees a
// steady stream of container_updated events.
func simulateLocation(client *api.Client, loc models.Location, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	fills := make(map[string]float64, len(loc.Containers))
	for _, c := range loc.Containers {
		fills[c.ID] = c.FillLevel
	}

	for range tick.C {
		allFull := true
		for _, c := range loc.Containers {
			fills[c.ID] += 2 + rand.Float64()*6
			if fills[c.ID] > 100 {
				fills[c.ID] = 100
			}
			if fills[c.ID] < models.FullThreshold {
				allFull = false
			}

			level := fills[c.ID]
			result, err := client.UpdateContainer(context.Background(), c.ID, api.ContainerPatch{FillLevel: &level})
			if err != nil {
				log.WithError(err).Error("Failed to update container")
				continue
			}
			log.WithFields(log.Fields{
				"location":        loc.Name,
				"container_id":    c.ID,
				"fill_level":      level,
				"status":          result.Container.Status,
				"location_status": result.LocationStatus,
			}).Info("Sent fill level")
		}

		if allFull {
			if err := client.CollectWaste(context.Background(), loc.ID, "simulated pickup"); err != nil {
				log.WithError(err).Error("Failed to register collection")
				continue
			}
			for id := range fills {
				fills[id] = 0
			}
			log.WithField("location", loc.Name).Info("Registered collection")
		}
	}
}

func main() {
	cfg := config.Load()

	fleetSize := 5
	if v := os.Getenv("FLEET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fleetSize = n
		}
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	email := os.Getenv("SIM_EMAIL")
	password := os.Getenv("SIM_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SIM_EMAIL and SIM_PASSWORD are required")
	}

	var token string
	client := api.New(cfg.APIBaseURL, func() string { return token })

	resp, err := client.Login(context.Background(), email, password)
	if err != nil {
		log.WithError(err).Fatal("Login failed")
	}
	token = resp.AccessToken

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    cfg.APIBaseURL,
		"interval":   interval,
		"company_id": resp.User.CompanyID,
	}).Info("Starting fill-level simulation")

	created := make([]models.Location, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		loc, err := client.CreateLocation(context.Background(), randomSite(i))
		if err != nil {
			log.WithError(err).Error("Failed to create location")
			continue
		}
		log.WithFields(log.Fields{
			"location_id": loc.ID,
			"name":        loc.Name,
			"containers":  len(loc.Containers),
		}).Info("Created location")
		created = append(created, *loc)
	}

	if len(created) == 0 {
		log.Error("No locations created. Ensure credentials are valid and the API is reachable. Exiting.")
		return
	}

	for _, loc := range created {
		go simulateLocation(client, loc, interval)
	}

	log.Info("Fill-level simulation started")
	select {} // Block forever
}
