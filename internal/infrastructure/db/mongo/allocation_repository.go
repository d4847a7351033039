package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/ports"
)

const collectionAllocations = "allocations"

// notDeleted excludes soft-deleted rows; they stay in the collection for
// audit history but never surface in reads.
var notDeleted = bson.M{"$exists": false}

type AllocationRepository struct {
	col *mongo.Collection
}

func NewAllocationRepository(db *mongo.Database) *AllocationRepository {
	return &AllocationRepository{col: db.Collection(collectionAllocations)}
}

// FindOverlapping returns the user's live allocations whose inclusive date
// range overlaps [start, end]: start_date <= end AND start <= end_date.
func (r *AllocationRepository) FindOverlapping(ctx context.Context, orgID, userID string, start, end time.Time, excludeID string) ([]domain.Allocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": orgID,
		"user_id":         userID,
		"deleted_at":      notDeleted,
		"start_date":      bson.M{"$lte": end},
		"end_date":        bson.M{"$gte": start},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	return r.findAll(ctx, filter)
}

// FindByProjectWindow returns the project's live allocations overlapping
// [start, end].
func (r *AllocationRepository) FindByProjectWindow(ctx context.Context, orgID, projectID string, start, end time.Time) ([]domain.Allocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findAll(ctx, bson.M{
		"organization_id": orgID,
		"project_id":      projectID,
		"deleted_at":      notDeleted,
		"start_date":      bson.M{"$lte": end},
		"end_date":        bson.M{"$gte": start},
	})
}

func (r *AllocationRepository) findAll(ctx context.Context, filter bson.M) ([]domain.Allocation, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Allocation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AllocationRepository) FindByID(ctx context.Context, orgID, id string) (*domain.Allocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Allocation
	err := r.col.FindOne(ctx, bson.M{
		"_id":             id,
		"organization_id": orgID,
		"deleted_at":      notDeleted,
	}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAllocationNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AllocationRepository) Insert(ctx context.Context, a *domain.Allocation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *AllocationRepository) Update(ctx context.Context, a *domain.Allocation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":             a.ID,
		"organization_id": a.OrganizationID,
		"deleted_at":      notDeleted,
	}
	update := bson.M{"$set": bson.M{
		"project_id":         a.ProjectID,
		"user_id":            a.UserID,
		"role":               a.Role,
		"allocation_percent": a.Percent,
		"start_date":         a.StartDate,
		"end_date":           a.EndDate,
		"is_billable":        a.Billable,
		"notes":              a.Notes,
		"updated_at":         a.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAllocationNotFound
	}
	return nil
}

func (r *AllocationRepository) SoftDelete(ctx context.Context, orgID, id string, deletedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{
		"_id":             id,
		"organization_id": orgID,
		"deleted_at":      notDeleted,
	}, bson.M{"$set": bson.M{"deleted_at": deletedAt}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAllocationNotFound
	}
	return nil
}

// List returns a page of live allocations matching the filter plus the total
// match count.
func (r *AllocationRepository) List(ctx context.Context, f ports.ListAllocationsFilter) ([]domain.Allocation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id": f.OrganizationID,
		"deleted_at":      notDeleted,
	}
	if f.ProjectID != "" {
		filter["project_id"] = f.ProjectID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Billable != nil {
		filter["is_billable"] = *f.Billable
	}
	if !f.DateFrom.IsZero() {
		filter["end_date"] = bson.M{"$gte": f.DateFrom}
	}
	if !f.DateTo.IsZero() {
		filter["start_date"] = bson.M{"$lte": f.DateTo}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []domain.Allocation
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// EnsureIndexes creates the indexes backing overlap queries, listings, and
// tenant scoping.
func (r *AllocationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "project_id", Value: 1}, {Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "deleted_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
