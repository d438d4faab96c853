// Package store holds the mongo adapters behind the narrow interfaces the
// content services consume.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/query"
)

// Posts is the mongo adapter for the "posts" collection.
type Posts struct {
	col *mongo.Collection
}

func NewPosts(db *mongo.Database) *Posts {
	return &Posts{col: db.Collection("posts")}
}

// FindPage runs the aggregation described by q and decodes the enriched rows.
func (s *Posts) FindPage(ctx context.Context, q *query.Query) ([]models.PostDetail, error) {
	cur, err := s.col.Aggregate(ctx, q.Pipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate posts: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.PostDetail
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return rows, nil
}

// Count counts documents matching the query filter, independent of skip/limit.
func (s *Posts) Count(ctx context.Context, q *query.Query) (int64, error) {
	n, err := s.col.CountDocuments(ctx, q.Filter())
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// FindByID returns the post or (nil, nil) when no document matches.
func (s *Posts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// Insert persists a new post.
func (s *Posts) Insert(ctx context.Context, p *models.Post) error {
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// Update overwrites the listed fields on the target post. Returns false when
// no document matched.
func (s *Posts) Update(ctx context.Context, id primitive.ObjectID, u models.PostUpdate) (bool, error) {
	set := bson.M{
		"title":           u.Title,
		"content":         u.Content,
		"excerpt":         u.Excerpt,
		"author":          u.Author,
		"category":        u.Category,
		"subcategory":     u.Subcategory,
		"tags":            u.Tags,
		"metaTitle":       u.MetaTitle,
		"metaDescription": u.MetaDescription,
		"metaKeywords":    u.MetaKeywords,
		"imageCredit":     u.ImageCredit,
		"status":          u.Status,
		"updated_date":    u.UpdatedDate,
	}
	if u.FeaturedImage != nil {
		set["featuredImage"] = *u.FeaturedImage
	}

	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}
	return true, nil
}

// Delete atomically locates and removes the target post. Returns false when
// no document matched.
func (s *Posts) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return true, nil
}
