package db

import (
	"context"
	"errors"

	"kartbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type KartStore struct {
	Coll *mongo.Collection
}

func (s KartStore) ListActive(ctx context.Context) ([]models.Kart, error) {
	return findAll[models.Kart](ctx, s.Coll, bson.M{"isActive": true})
}

func (s KartStore) ListAll(ctx context.Context) ([]models.Kart, error) {
	return findAll[models.Kart](ctx, s.Coll, bson.M{})
}

func (s KartStore) GetByID(ctx context.Context, id string) (*models.Kart, error) {
	return findByID[models.Kart](ctx, s.Coll, id)
}

func (s KartStore) Create(ctx context.Context, k *models.Kart) error {
	return insert(ctx, s.Coll, k)
}

func (s KartStore) Update(ctx context.Context, k *models.Kart) error {
	return replaceByID(ctx, s.Coll, k.ID, k)
}

func (s KartStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.Coll, id)
}

// KartTypeStore relies on the unique name index for conflicts.
type KartTypeStore struct {
	Coll *mongo.Collection
}

func (s KartTypeStore) ListActive(ctx context.Context) ([]models.KartType, error) {
	return findAll[models.KartType](ctx, s.Coll, bson.M{"isActive": true})
}

func (s KartTypeStore) ListAll(ctx context.Context) ([]models.KartType, error) {
	return findAll[models.KartType](ctx, s.Coll, bson.M{})
}

func (s KartTypeStore) GetByID(ctx context.Context, id string) (*models.KartType, error) {
	return findByID[models.KartType](ctx, s.Coll, id)
}

func (s KartTypeStore) Create(ctx context.Context, t *models.KartType) error {
	return insert(ctx, s.Coll, t)
}

func (s KartTypeStore) Update(ctx context.Context, t *models.KartType) error {
	return replaceByID(ctx, s.Coll, t.ID, t)
}

func (s KartTypeStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.Coll, id)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var v T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	return err
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
