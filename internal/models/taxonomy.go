package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is owned and lifecycle-managed outside this service; posts only
// reference it and the read model resolves its name.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name"          json:"name"`
}

// Subcategory mirrors Category in a separate collection.
type Subcategory struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name"          json:"name"`
}

// Tag is referenced many-to-many from posts.
type Tag struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name"          json:"name"`
}
