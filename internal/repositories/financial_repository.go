package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"interiorerp/internal/models"
)

type financialRepository struct {
	coll *mongo.Collection
}

func NewFinancialRepository(db *mongo.Database) FinancialRepository {
	return &financialRepository{coll: db.Collection(CollFinancials)}
}

func (r *financialRepository) GetByID(ctx context.Context, id string) (*models.FinancialRecord, error) {
	return findOne[models.FinancialRecord](ctx, r.coll, id)
}

func (r *financialRepository) ListByProject(ctx context.Context, projectID string) ([]models.FinancialRecord, error) {
	return findAll[models.FinancialRecord](ctx, r.coll, bson.M{"projectId": projectID})
}

func (r *financialRepository) Create(ctx context.Context, rec *models.FinancialRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("create financial record: %w", err)
	}
	return nil
}

func (r *financialRepository) SetApproval(ctx context.Context, id string, party models.Party, approved bool) error {
	var field string
	switch party {
	case models.PartyAdmin:
		field = "adminApproved"
	case models.PartyClient:
		field = "clientApproved"
	default:
		return fmt.Errorf("financial approval by %q not supported", party)
	}
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{field: approved}})
}

type meetingRepository struct {
	coll *mongo.Collection
}

func NewMeetingRepository(db *mongo.Database) MeetingRepository {
	return &meetingRepository{coll: db.Collection(CollMeetings)}
}

func (r *meetingRepository) ListByProject(ctx context.Context, projectID string) ([]models.Meeting, error) {
	return findAll[models.Meeting](ctx, r.coll, bson.M{"projectId": projectID})
}

func (r *meetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}
