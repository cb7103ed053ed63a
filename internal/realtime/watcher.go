package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

// Mongo server codes that show up when a stream is torn down under us.
const (
	codeUnauthorized = 13
	codeInterrupted  = 11601
)

// IsTeardownError reports whether err is an expected consequence of
// unsubscribing, logging out or shutting down rather than a real failure.
func IsTeardownError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(codeUnauthorized) || se.HasErrorCode(codeInterrupted)
	}
	return false
}

// Watcher delivers full-collection snapshots of one project over Mongo change streams.
type Watcher struct {
	db  *mongo.Database
	log *logrus.Logger
}

func NewWatcher(db *mongo.Database, log *logrus.Logger) *Watcher {
	return &Watcher{db: db, log: log}
}

// SubscribeTasks streams the project's task set: once immediately, then after every change.
func (w *Watcher) SubscribeTasks(ctx context.Context, projectID string, onSnapshot func([]models.Task), onError func(error)) (unsubscribe func()) {
	return subscribe(ctx, w, repositories.CollTasks, projectID, onSnapshot, onError)
}

func (w *Watcher) SubscribeDocuments(ctx context.Context, projectID string, onSnapshot func([]models.Document), onError func(error)) (unsubscribe func()) {
	return subscribe(ctx, w, repositories.CollDocuments, projectID, onSnapshot, onError)
}

func (w *Watcher) SubscribeFinancials(ctx context.Context, projectID string, onSnapshot func([]models.FinancialRecord), onError func(error)) (unsubscribe func()) {
	return subscribe(ctx, w, repositories.CollFinancials, projectID, onSnapshot, onError)
}

func subscribe[T any](ctx context.Context, w *Watcher, collection, projectID string, onSnapshot func([]T), onError func(error)) func() {
	ctx, cancel := context.WithCancel(ctx)
	coll := w.db.Collection(collection)
	done := make(chan struct{})

	report := func(err error) {
		if IsTeardownError(err) {
			w.log.Debugf("[realtime][%s][teardown] project=%s: %v", collection, projectID, err)
			return
		}
		w.log.Warnf("[realtime][%s][err] project=%s: %v", collection, projectID, err)
		if onError != nil {
			onError(err)
		}
	}
	load := func() bool {
		var docs []T
		cur, err := coll.Find(ctx, bson.M{"projectId": projectID})
		if err == nil {
			err = cur.All(ctx, &docs)
		}
		if err != nil {
			report(fmt.Errorf("snapshot %s: %w", collection, err))
			return false
		}
		if docs == nil {
			docs = []T{}
		}
		onSnapshot(docs)
		return true
	}

	go func() {
		defer close(done)

		// deletes carry no fullDocument, so they always trigger a re-read
		pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.projectId": projectID},
			bson.M{"operationType": "delete"},
		}}}}}
		stream, err := coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
		if err != nil {
			report(fmt.Errorf("watch %s: %w", collection, err))
			return
		}
		defer stream.Close(context.Background())

		if !load() {
			return
		}
		for stream.Next(ctx) {
			if !load() {
				return
			}
		}
		if err := stream.Err(); err != nil {
			report(err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
