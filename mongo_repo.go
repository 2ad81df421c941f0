package accounts

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
}

func NewMongoAccountRepository(c *mongo.Collection) Repository {
	return &mongoAccountRepository{collection: c}
}

// EnsureIndexes creates the unique email index the Create contract relies
// on. Call once at startup.
func EnsureIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return m.findAccountBy(ctx, "email", email)
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, "_id", string(id))
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, key string, val string) (*Account, error) {
	var acc Account
	sr := m.collection.FindOne(ctx, bson.M{key: val})

	if sr.Err() == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}

	if err := sr.Decode(&acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (m *mongoAccountRepository) Create(ctx context.Context, acc *Account) error {
	if acc.ID == "" {
		acc.ID = NewID()
	}

	_, err := m.collection.InsertOne(ctx, acc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrExistingEmail
	}
	return err
}

func (m *mongoAccountRepository) UpdateByID(ctx context.Context, id ID, fields Fields) (*Account, error) {
	set := bson.M{}
	for key, val := range fields {
		if key == "_id" || key == "id" {
			continue
		}
		set[key] = val
	}

	// Mongo rejects an empty $set document.
	if len(set) == 0 {
		return m.FindByID(ctx, id)
	}

	var acc Account
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	sr := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": string(id)}, bson.M{"$set": set}, opts)

	if sr.Err() == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}

	if err := sr.Decode(&acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (m *mongoAccountRepository) DeleteByID(ctx context.Context, id ID) (*Account, error) {
	var acc Account
	sr := m.collection.FindOneAndDelete(ctx, bson.M{"_id": string(id)})

	if sr.Err() == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}

	if err := sr.Decode(&acc); err != nil {
		return nil, err
	}

	return &acc, nil
}
