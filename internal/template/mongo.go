package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoTemplate is the document layout of the emailtemplates collection
type mongoTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Image     string             `bson:"image"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *mongoTemplate) toTemplate() *Template {
	return &Template{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		CreatedAt: d.CreatedAt,
	}
}

// MongoStore implements Store on a MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and verifies the server is reachable
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect mongodb", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, unavailable("ping mongodb", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// List returns all documents in natural order
func (s *MongoStore) List(ctx context.Context) ([]*Template, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, unavailable("list templates", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoTemplate
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("list templates", err)
	}

	templates := make([]*Template, 0, len(docs))
	for i := range docs {
		templates = append(templates, docs[i].toTemplate())
	}
	return templates, nil
}

// Create inserts a new document
func (s *MongoStore) Create(ctx context.Context, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	doc := mongoTemplate{
		ID:        primitive.NewObjectID(),
		Title:     f.Title,
		Content:   f.Content,
		Image:     f.Image,
		// BSON dates hold milliseconds
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, unavailable("create template", err)
	}

	return doc.toTemplate(), nil
}

// UpdateByID replaces the mutable fields in a single FindOneAndUpdate
func (s *MongoStore) UpdateByID(ctx context.Context, id string, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"title":   f.Title,
		"content": f.Content,
		"image":   f.Image,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTemplate
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("update template", err)
	}

	return doc.toTemplate(), nil
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
