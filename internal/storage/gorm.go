package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aneedalie/meili/internal/models"
)

// GormGateway persists trips, cards, threads and messages through gorm.
type GormGateway struct {
	DB *gorm.DB
}

func NewGormGateway(db *gorm.DB) *GormGateway { return &GormGateway{DB: db} }

// Migrate creates the schema for all stored models.
func (g *GormGateway) Migrate() error {
	return g.DB.AutoMigrate(
		&models.Trip{},
		&models.Card{},
		&models.Thread{},
		&models.Message{},
	)
}

func (g *GormGateway) FetchTripSnapshot(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	err := g.DB.WithContext(ctx).First(&trip, "id = ?", tripID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (g *GormGateway) FetchCards(ctx context.Context, tripID string) ([]models.Card, error) {
	var cards []models.Card
	err := g.DB.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// UpsertCard inserts the card if absent or replaces it by id.
func (g *GormGateway) UpsertCard(ctx context.Context, tripID string, card models.Card) (*models.Card, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	card.TripID = tripID
	if err := g.DB.WithContext(ctx).Save(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (g *GormGateway) RenameTrip(ctx context.Context, tripID, name string) (*models.Trip, error) {
	trip, err := g.FetchTripSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip.Name = name
	if err := g.DB.WithContext(ctx).Model(trip).Update("name", name).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (g *GormGateway) AppendMessage(ctx context.Context, threadID string, msg models.Message) (*models.Message, error) {
	var thread models.Thread
	err := g.DB.WithContext(ctx).First(&thread, "id = ?", threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.ThreadID = threadID
	if err := g.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (g *GormGateway) AppendThread(ctx context.Context, cardID string, thread models.Thread) (*models.Thread, error) {
	var card models.Card
	err := g.DB.WithContext(ctx).First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	if thread.ID == "" {
		thread.ID = uuid.NewString()
	}
	thread.CardID = cardID
	if err := g.DB.WithContext(ctx).Create(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (g *GormGateway) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	if err := g.DB.WithContext(ctx).Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (g *GormGateway) CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if err := g.DB.WithContext(ctx).Create(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (g *GormGateway) UpdateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	existing, err := g.FetchTripSnapshot(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if err := g.DB.WithContext(ctx).Model(existing).Updates(map[string]any{
		"name":    trip.Name,
		"picture": trip.Picture,
	}).Error; err != nil {
		return nil, err
	}
	return g.FetchTripSnapshot(ctx, trip.ID)
}

func (g *GormGateway) FetchThreads(ctx context.Context, cardID string) ([]models.Thread, error) {
	var threads []models.Thread
	err := g.DB.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("created_at asc").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (g *GormGateway) FetchMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	var messages []models.Message
	err := g.DB.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
