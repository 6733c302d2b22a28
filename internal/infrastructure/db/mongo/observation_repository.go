package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

const observationsCollection = "order_status_observations"

type observationDoc struct {
	OrderID    int       `bson:"order_id"`
	Status     string    `bson:"status"`
	ObservedAt time.Time `bson:"observed_at"`
	Source     string    `bson:"source"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// ObservationRepository implements ports.ObservationRepository using MongoDB.
type ObservationRepository struct {
	db *mongo.Database
}

// NewObservationRepository creates a new ObservationRepository.
func NewObservationRepository(db *mongo.Database) ports.ObservationRepository {
	return &ObservationRepository{db: db}
}

// Insert appends an observation to the audit collection.
func (r *ObservationRepository) Insert(ctx context.Context, obs domain.StatusObservation) error {
	doc := observationDoc{
		OrderID:    obs.OrderID,
		Status:     string(obs.Status),
		ObservedAt: obs.ObservedAt.UTC(),
		Source:     obs.Source,
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.db.Collection(observationsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// ListByOrder returns an order's observations, oldest first.
func (r *ObservationRepository) ListByOrder(ctx context.Context, orderID int) ([]domain.StatusObservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "observed_at", Value: 1}})
	cur, err := r.db.Collection(observationsCollection).Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find observations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []observationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode observations: %w", err)
	}

	out := make([]domain.StatusObservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.StatusObservation{
			OrderID:    d.OrderID,
			Status:     domain.OrderStatus(d.Status),
			ObservedAt: d.ObservedAt,
			Source:     d.Source,
		})
	}
	return out, nil
}
