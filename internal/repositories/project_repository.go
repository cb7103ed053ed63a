package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interiorerp/internal/models"
)

type projectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) ProjectRepository {
	return &projectRepository{coll: db.Collection(CollProjects)}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return findOne[models.Project](ctx, r.coll, id)
}

func (r *projectRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Project, error) {
	return findAll[models.Project](ctx, r.coll, bson.M{"tenantId": tenantID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *projectRepository) ListAll(ctx context.Context) ([]models.Project, error) {
	return findAll[models.Project](ctx, r.coll, bson.M{})
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, projectID string, field MemberField, userID string) error {
	if !field.IsValid() {
		return fmt.Errorf("unknown member field %q", field)
	}
	return updateByID(ctx, r.coll, projectID, bson.M{"$addToSet": bson.M{string(field): userID}})
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID string, field MemberField, userID string) error {
	if !field.IsValid() {
		return fmt.Errorf("unknown member field %q", field)
	}
	return updateByID(ctx, r.coll, projectID, bson.M{"$pull": bson.M{string(field): userID}})
}
