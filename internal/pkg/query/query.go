// Package query is a typed aggregation builder. Services describe a read as
// filter, sort, joins, projection, skip and limit; the store adapter translates
// it into a native mongo pipeline.
package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SortField is one ordering criterion.
type SortField struct {
	Field string
	Desc  bool
}

// Lookup describes a reference-style join against another collection.
// Single joins unwind to at most one document and keep unmatched parents.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Single       bool
}

// Query is an ordered read description.
type Query struct {
	filter   bson.M
	sort     []SortField
	lookups  []Lookup
	project  bson.M
	skip     int64
	limit    int64
	hasSkip  bool
	hasLimit bool
}

// New returns an empty query.
func New() *Query { return &Query{} }

// Match sets the filter stage.
func (q *Query) Match(filter bson.M) *Query {
	q.filter = filter
	return q
}

// SortDesc appends a descending sort field.
func (q *Query) SortDesc(field string) *Query {
	q.sort = append(q.sort, SortField{Field: field, Desc: true})
	return q
}

// SortAsc appends an ascending sort field.
func (q *Query) SortAsc(field string) *Query {
	q.sort = append(q.sort, SortField{Field: field})
	return q
}

// LookupOne joins at most one document from the target collection, keeping
// parents without a match.
func (q *Query) LookupOne(from, localField, foreignField, as string) *Query {
	q.lookups = append(q.lookups, Lookup{From: from, LocalField: localField, ForeignField: foreignField, As: as, Single: true})
	return q
}

// LookupMany joins all matching documents from the target collection.
func (q *Query) LookupMany(from, localField, foreignField, as string) *Query {
	q.lookups = append(q.lookups, Lookup{From: from, LocalField: localField, ForeignField: foreignField, As: as})
	return q
}

// Project sets the projection map (field → 1).
func (q *Query) Project(fields bson.M) *Query {
	q.project = fields
	return q
}

// Skip sets the number of documents to pass over.
func (q *Query) Skip(n int64) *Query {
	q.skip = n
	q.hasSkip = true
	return q
}

// Limit caps the number of returned documents.
func (q *Query) Limit(n int64) *Query {
	q.limit = n
	q.hasLimit = true
	return q
}

// Filter returns the match filter, for count-by-filter reuse.
func (q *Query) Filter() bson.M {
	if q.filter == nil {
		return bson.M{}
	}
	return q.filter
}

// Pipeline translates the query into mongo aggregation stages, in builder
// order: match, sort, lookups (with unwind for single joins), project,
// skip, limit.
func (q *Query) Pipeline() mongo.Pipeline {
	var p mongo.Pipeline

	if len(q.filter) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: q.filter}})
	}
	if len(q.sort) > 0 {
		sort := bson.D{}
		for _, s := range q.sort {
			order := 1
			if s.Desc {
				order = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: order})
		}
		p = append(p, bson.D{{Key: "$sort", Value: sort}})
	}
	for _, l := range q.lookups {
		p = append(p, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: l.From},
			{Key: "localField", Value: l.LocalField},
			{Key: "foreignField", Value: l.ForeignField},
			{Key: "as", Value: l.As},
		}}})
		if l.Single {
			p = append(p, bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + l.As},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}})
		}
	}
	if len(q.project) > 0 {
		p = append(p, bson.D{{Key: "$project", Value: q.project}})
	}
	if q.hasSkip {
		p = append(p, bson.D{{Key: "$skip", Value: q.skip}})
	}
	if q.hasLimit {
		p = append(p, bson.D{{Key: "$limit", Value: q.limit}})
	}
	return p
}
