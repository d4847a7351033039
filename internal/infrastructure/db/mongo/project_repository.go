package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

const collectionProjects = "projects"

type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

func (r *ProjectRepository) FindByID(ctx context.Context, orgID, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	err := r.col.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// NamesByIDs resolves display names for a set of project ids. Missing ids are
// absent from the result rather than errors.
func (r *ProjectRepository) NamesByIDs(ctx context.Context, orgID string, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "organization_id": orgID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make(map[string]string, len(ids))
	for cur.Next(ctx) {
		var p domain.Project
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		names[p.ID] = p.Name
	}
	return names, cur.Err()
}
