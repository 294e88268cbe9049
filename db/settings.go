package db

import (
	"context"
	"fmt"

	"kartbook/models"
	"kartbook/settings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsStore keeps the single settings document under models.SettingsID.
type SettingsStore struct {
	Coll *mongo.Collection
}

// Current returns the stored settings, inserting the defaults first if the
// document does not exist.
func (s SettingsStore) Current(ctx context.Context) (*models.Settings, error) {
	defaults, err := toDoc(settings.Defaults())
	if err != nil {
		return nil, err
	}
	delete(defaults, "_id")

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var out models.Settings
	err = s.Coll.FindOneAndUpdate(ctx,
		bson.M{"_id": models.SettingsID},
		bson.M{"$setOnInsert": defaults},
		opts,
	).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &out, nil
}

func (s SettingsStore) Save(ctx context.Context, st *models.Settings) error {
	st.ID = models.SettingsID
	_, err := s.Coll.ReplaceOne(ctx, bson.M{"_id": models.SettingsID}, st, options.Replace().SetUpsert(true))
	return err
}

func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
