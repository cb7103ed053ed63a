package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interiorerp/internal/models"
)

type documentRepository struct {
	coll *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) DocumentRepository {
	return &documentRepository{coll: db.Collection(CollDocuments)}
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return findOne[models.Document](ctx, r.coll, id)
}

func (r *documentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	return findAll[models.Document](ctx, r.coll, bson.M{"projectId": projectID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *documentRepository) Create(ctx context.Context, d *models.Document) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *documentRepository) SetApproval(ctx context.Context, id string, party models.Party, status models.ApprovalStatus) error {
	var field string
	switch party {
	case models.PartyAdmin:
		field = "adminApproval"
	case models.PartyClient:
		field = "clientApproval"
	default:
		return fmt.Errorf("document approval by %q not supported", party)
	}
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{field: status}})
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}
