package db

import (
	"context"
	"errors"
	"strings"

	"kartbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore keeps staff accounts. Emails are stored lower-cased.
type UserStore struct {
	Coll *mongo.Collection
}

func (s UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.Coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findByID[models.User](ctx, s.Coll, id)
}

func (s UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return insert(ctx, s.Coll, u)
}

func (s UserStore) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return replaceByID(ctx, s.Coll, u.ID, u)
}
