package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post status values. Only published posts are visible on the public listing.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a blog post document in the "posts" collection.
type Post struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"          json:"_id"`
	Title           string               `bson:"title"                  json:"title"`
	Slug            string               `bson:"slug"                   json:"slug"`
	Content         string               `bson:"content"                json:"content"`
	Excerpt         string               `bson:"excerpt"                json:"excerpt"`
	Author          string               `bson:"author"                 json:"author"`
	Category        *primitive.ObjectID  `bson:"category,omitempty"     json:"category"`
	Subcategory     *primitive.ObjectID  `bson:"subcategory,omitempty"  json:"subcategory"`
	Tags            []primitive.ObjectID `bson:"tags"                   json:"tags"`
	MetaTitle       string               `bson:"metaTitle"              json:"metaTitle"`
	MetaDescription string               `bson:"metaDescription"        json:"metaDescription"`
	MetaKeywords    string               `bson:"metaKeywords"           json:"metaKeywords"`
	FeaturedImage   string               `bson:"featuredImage"          json:"featuredImage"`
	ImageCredit     string               `bson:"imageCredit"            json:"imageCredit"`
	Status          string               `bson:"status"                 json:"status"`
	PublishDate     time.Time            `bson:"publish_date"           json:"publish_date"`
	UpdatedDate     time.Time            `bson:"updated_date"           json:"updated_date"`
}

// PostDetail is a Post enriched by taxonomy lookups. The joined documents are
// populated by the aggregation pipeline, never persisted.
type PostDetail struct {
	Post           `bson:",inline"`
	CategoryDoc    *Category    `bson:"categoryDoc,omitempty"`
	SubcategoryDoc *Subcategory `bson:"subcategoryDoc,omitempty"`
	TagDocs        []Tag        `bson:"tagDocs,omitempty"`
}

// PostUpdate carries the full replacement field set for an update. Every field
// is written unconditionally; FeaturedImage is written only when non-nil.
type PostUpdate struct {
	Title           string
	Content         string
	Excerpt         string
	Author          string
	Category        *primitive.ObjectID
	Subcategory     *primitive.ObjectID
	Tags            []primitive.ObjectID
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	ImageCredit     string
	Status          string
	FeaturedImage   *string
	UpdatedDate     time.Time
}
