package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interiorerp/internal/models"
)

type taskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) TaskRepository {
	return &taskRepository{coll: db.Collection(CollTasks)}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return findOne[models.Task](ctx, r.coll, id)
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return findAll[models.Task](ctx, r.coll, bson.M{"projectId": projectID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *taskRepository) Create(ctx context.Context, t *models.Task) error {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, t *models.Task) error {
	set := bson.M{
		"title":        t.Title,
		"description":  t.Description,
		"subtasks":     t.SubTasks,
		"dependencies": t.Dependencies,
		"assigneeId":   t.AssigneeID,
		"dueDate":      t.DueDate,
		"updatedAt":    time.Now(),
	}
	update := bson.M{"$set": set}
	if t.Progress != nil {
		set["progress"] = *t.Progress
	} else {
		update["$unset"] = bson.M{"progress": ""}
	}
	return updateByID(ctx, r.coll, t.ID, update)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
}

func (r *taskRepository) SetApproval(ctx context.Context, id string, gate models.Gate, party models.Party, cell models.TaskApproval) error {
	path := fmt.Sprintf("approvals.%s.%s", gate, party)
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{path: cell}})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id)
}
