package storage

import (
	"context"
	"errors"

	"github.com/aneedalie/meili/internal/models"
)

var (
	ErrTripNotFound   = errors.New("trip not found")
	ErrCardNotFound   = errors.New("card not found")
	ErrThreadNotFound = errors.New("thread not found")
)

// Gateway is the durable-storage contract the session hub depends on.
// Every write returns the canonical persisted value so broadcasts always
// reflect what was actually stored.
type Gateway interface {
	FetchTripSnapshot(ctx context.Context, tripID string) (*models.Trip, error)
	FetchCards(ctx context.Context, tripID string) ([]models.Card, error)
	UpsertCard(ctx context.Context, tripID string, card models.Card) (*models.Card, error)
	RenameTrip(ctx context.Context, tripID, name string) (*models.Trip, error)
	AppendMessage(ctx context.Context, threadID string, msg models.Message) (*models.Message, error)
	AppendThread(ctx context.Context, cardID string, thread models.Thread) (*models.Thread, error)
}

// Store widens Gateway with the record CRUD used by the REST API.
type Store interface {
	Gateway

	ListTrips(ctx context.Context) ([]models.Trip, error)
	CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error)
	UpdateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error)
	FetchThreads(ctx context.Context, cardID string) ([]models.Thread, error)
	FetchMessages(ctx context.Context, threadID string) ([]models.Message, error)
}
