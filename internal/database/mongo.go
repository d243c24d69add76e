package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDriver is a document sink. It does not implement DatabaseDriver: the
// relational layers never run against it.
type MongoDriver struct {
	client   *mongo.Client
	database string
}

func (md *MongoDriver) Connect(ctx context.Context, uri, database string) error {
	if database == "" {
		return fmt.Errorf("mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	md.client = client
	md.database = database
	return nil
}

func (md *MongoDriver) Close(ctx context.Context) error {
	if md.client == nil {
		return nil
	}
	return md.client.Disconnect(ctx)
}

func (md *MongoDriver) Collection(name string) *mongo.Collection {
	return md.client.Database(md.database).Collection(name)
}

// InsertOne stores doc in the named collection and returns its _id.
func (md *MongoDriver) InsertOne(ctx context.Context, collection string, doc bson.M) (interface{}, error) {
	res, err := md.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

// FindOne decodes the document matching filter into dest.
func (md *MongoDriver) FindOne(ctx context.Context, collection string, filter bson.M, dest interface{}) error {
	return md.Collection(collection).FindOne(ctx, filter).Decode(dest)
}
