package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPipelineStageOrder(t *testing.T) {
	q := New().
		Match(bson.M{"status": "published"}).
		SortDesc("publish_date").
		LookupOne("categories", "category", "_id", "categoryDoc").
		LookupMany("tags", "tags", "_id", "tagDocs").
		Skip(6).
		Limit(6)

	p := q.Pipeline()
	require.Len(t, p, 7)

	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, "$sort", p[1][0].Key)
	assert.Equal(t, "$lookup", p[2][0].Key)
	assert.Equal(t, "$unwind", p[3][0].Key)
	assert.Equal(t, "$lookup", p[4][0].Key) // LookupMany emits no unwind
	assert.Equal(t, "$skip", p[5][0].Key)
	assert.Equal(t, "$limit", p[6][0].Key)
	assert.Equal(t, int64(6), p[6][0].Value)
}

func TestPipelineSingleLookupUnwindKeepsUnmatched(t *testing.T) {
	p := New().LookupOne("categories", "category", "_id", "categoryDoc").Pipeline()
	require.Len(t, p, 2)

	unwind, ok := p[1][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$categoryDoc", unwind[0].Value)
	assert.Equal(t, true, unwind[1].Value)
}

func TestPipelineSortDirection(t *testing.T) {
	p := New().SortDesc("publish_date").SortAsc("title").Pipeline()
	require.Len(t, p, 1)

	sort, ok := p[0][0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.E{Key: "publish_date", Value: -1}, sort[0])
	assert.Equal(t, bson.E{Key: "title", Value: 1}, sort[1])
}

func TestSkipZeroIsEmitted(t *testing.T) {
	// page=1 produces skip 0; the stage must still appear so the adapter
	// translation does not depend on the value.
	p := New().Skip(0).Pipeline()
	require.Len(t, p, 1)
	assert.Equal(t, "$skip", p[0][0].Key)
	assert.Equal(t, int64(0), p[0][0].Value)
}

func TestFilterDefaultsToEmpty(t *testing.T) {
	assert.Equal(t, bson.M{}, New().Filter())
	assert.Equal(t, bson.M{"a": 1}, New().Match(bson.M{"a": 1}).Filter())
}
