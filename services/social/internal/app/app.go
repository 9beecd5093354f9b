// Package app implements the social service's core operations: round
// lifecycle, conversations, messaging, reputation and reviews. Handlers call
// into here; everything below the app boundary is a collaborator interface.
package app

import (
	"time"

	"teeup/internal/util"
	"teeup/pkg/events"
	"teeup/pkg/realtime"
	"teeup/pkg/storage"
	"teeup/pkg/store"
)

// App wires the store, realtime broker and optional side-effect publishers.
type App struct {
	store   store.Store
	broker  realtime.Broker
	events  *events.Publisher
	avatars storage.AvatarStore
	newID   func() string
	now     func() time.Time
}

// Options carries the optional collaborators and test seams.
type Options struct {
	// Events may be nil; lifecycle emits become no-ops.
	Events *events.Publisher
	// Avatars may be nil; avatar upload is then unavailable.
	Avatars storage.AvatarStore
	NewID   func() string
	Now     func() time.Time
}

// New builds the app. st and broker are required.
func New(st store.Store, broker realtime.Broker, opts Options) *App {
	if opts.NewID == nil {
		opts.NewID = util.NewID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &App{
		store:   st,
		broker:  broker,
		events:  opts.Events,
		avatars: opts.Avatars,
		newID:   opts.NewID,
		now:     opts.Now,
	}
}
