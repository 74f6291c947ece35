// Package app wires the session store, fleet store and event channel into
// one explicit application-state object with a constructor and teardown
// pair. Nothing here lives in package-level mutable globals; consumers hold
// the App by reference.
package app

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/eco-monitor/internal/access"
	"github.com/ukydev/eco-monitor/internal/api"
	"github.com/ukydev/eco-monitor/internal/config"
	"github.com/ukydev/eco-monitor/internal/events"
	"github.com/ukydev/eco-monitor/internal/fleet"
	"github.com/ukydev/eco-monitor/internal/models"
	"github.com/ukydev/eco-monitor/internal/session"
	"github.com/ukydev/eco-monitor/internal/storage"
)

// App is the process-wide application state: one session, one fleet store,
// one event channel connection.
type App struct {
	Config  *config.Config
	API     *api.Client
	Session *session.Store
	Fleet   *fleet.Store
	Events  *events.Channel

	subs []events.Subscription
}

// New builds the application object and registers the event listeners that
// merge push updates into the fleet store.
func New(cfg *config.Config) (*App, error) {
	persist, err := storage.New(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(persist)
	client := api.New(cfg.APIBaseURL, sess.Token)

	a := &App{
		Config:  cfg,
		API:     client,
		Session: sess,
		Fleet:   fleet.NewStore(client),
		Events:  events.NewChannel(cfg.BrokerURL),
	}

	a.subs = append(a.subs,
		a.Events.On(models.EventContainerUpdated, a.onContainerUpdated),
		a.Events.On(models.EventLocationUpdated, a.onLocationUpdated),
	)
	return a, nil
}

// Login authenticates, establishes the session and opens the fleet. An auth
// failure is returned to the caller with session state unchanged. A fleet
// load failure after a successful login is logged, not returned: login
// succeeded; the fleet stays empty until a refresh works.
func (a *App) Login(ctx context.Context, email, password string) error {
	resp, err := a.API.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.Session.Establish(&resp.User, resp.AccessToken, resp.RefreshToken); err != nil {
		return err
	}

	// Fetch the fuller identity with access rights attached; keep the
	// login response's user on failure.
	if full, err := a.API.Me(ctx); err == nil {
		if err := a.Session.SetUser(full); err != nil {
			log.WithError(err).Warn("failed to persist full identity")
		}
	} else {
		log.WithError(err).Warn("failed to load full identity")
	}

	a.openFleet(ctx)
	return nil
}

// Restore loads a persisted session at process start. When one exists the
// session is treated as authenticated immediately and the fleet opens
// without any server-side token validation.
func (a *App) Restore(ctx context.Context) error {
	user, err := a.Session.Restore()
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	a.openFleet(ctx)
	return nil
}

// Logout closes the event channel, empties the fleet store and clears the
// session. Safe to call when already logged out.
func (a *App) Logout() error {
	a.Events.Disconnect()
	a.Fleet.Clear()
	return a.Session.Logout()
}

// RefreshFleet re-fetches the full location list for the active company.
func (a *App) RefreshFleet(ctx context.Context) error {
	return a.Fleet.Refresh(ctx)
}

// Resolver returns a permission resolver over the current identity.
func (a *App) Resolver() *access.Resolver {
	return access.NewResolver(a.Session.User())
}

// WatchConnectivity polls the event channel at the configured interval and
// reports every online/offline transition, including the initial state. The
// returned function stops the poller.
func (a *App) WatchConnectivity(onChange func(online bool)) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(a.Config.PollEvery)
		defer ticker.Stop()

		last := a.Events.IsConnected()
		onChange(last)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if current := a.Events.IsConnected(); current != last {
					last = current
					onChange(current)
				}
			}
		}
	}()
	return func() { close(done) }
}

// Close removes the event listeners and tears down the channel. The session
// itself is left persisted; Close is process teardown, not logout.
func (a *App) Close() {
	for _, sub := range a.subs {
		a.Events.Off(sub)
	}
	a.subs = nil
	a.Events.Disconnect()
}

// openFleet scopes the fleet store to the identity's company, loads it and
// connects the event channel to the company room.
func (a *App) openFleet(ctx context.Context) {
	user := a.Session.User()
	if user == nil || user.CompanyID == "" {
		return
	}

	a.Fleet.SetCompany(user.CompanyID)
	if err := a.Fleet.Refresh(ctx); err != nil {
		log.WithError(err).Error("failed to load locations")
	}
	a.Events.Connect(user.CompanyID)
}

func (a *App) onContainerUpdated(payload []byte) {
	var update models.ContainerUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		log.WithError(err).Warn("malformed container_updated payload")
		return
	}
	log.WithFields(log.Fields{
		"container_id": update.Container.ID,
		"location_id":  update.Location.ID,
		"status":       update.Container.Status,
	}).Debug("container updated")
	a.Fleet.ApplyContainerPatch(update)
}

func (a *App) onLocationUpdated(payload []byte) {
	var loc models.Location
	if err := json.Unmarshal(payload, &loc); err != nil {
		log.WithError(err).Warn("malformed location_updated payload")
		return
	}
	log.WithField("location_id", loc.ID).Debug("location updated")
	a.Fleet.ApplyLocationPatch(loc)
}
