package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is checked for existence before any write; this service never mutates it.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name"          json:"name"`
	Email string             `bson:"email"         json:"email"`
}
