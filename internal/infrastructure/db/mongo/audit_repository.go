package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

const collectionAuditEvents = "audit_events"

// AuditRepository persists audit events to the audit_events collection.
// Callers treat writes as fire-and-forget; the engine degrades to a warning
// when an insert fails.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditEvents)}
}

func (r *AuditRepository) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"action":          event.Action,
		"entity_type":     event.EntityType,
		"entity_id":       event.EntityID,
		"organization_id": event.OrganizationID,
		"user_id":         event.UserID,
		"recorded_at":     event.RecordedAt.UTC(),
		"inserted_at":     time.Now().UTC(),
	}
	if event.OldValues != nil {
		doc["old_values"] = event.OldValues
	}
	if event.NewValues != nil {
		doc["new_values"] = event.NewValues
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
