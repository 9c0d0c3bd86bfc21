package repository

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseTaskQuery(t *testing.T) {
	owner := uuid.New()
	yes, no := true, false

	tests := []struct {
		name   string
		params url.Values
		want   TaskQuery
	}{
		{
			name:   "no params means no restriction",
			params: url.Values{},
			want:   TaskQuery{OwnerID: owner},
		},
		{
			name:   "completed true",
			params: url.Values{"completed": {"true"}},
			want:   TaskQuery{OwnerID: owner, Completed: &yes},
		},
		{
			name:   "completed anything else is false",
			params: url.Values{"completed": {"nope"}},
			want:   TaskQuery{OwnerID: owner, Completed: &no},
		},
		{
			name:   "sort desc",
			params: url.Values{"sortBy": {"createdAt:desc"}},
			want:   TaskQuery{OwnerID: owner, Sort: &SortField{Column: "created_at", Desc: true}},
		},
		{
			name:   "sort defaults to asc",
			params: url.Values{"sortBy": {"description"}},
			want:   TaskQuery{OwnerID: owner, Sort: &SortField{Column: "description"}},
		},
		{
			name:   "unknown sort column dropped",
			params: url.Values{"sortBy": {"owner_id; DROP TABLE tasks:desc"}},
			want:   TaskQuery{OwnerID: owner},
		},
		{
			name:   "page bounds",
			params: url.Values{"limit": {"10"}, "skip": {"20"}},
			want:   TaskQuery{OwnerID: owner, Limit: 10, Skip: 20},
		},
		{
			name:   "malformed bounds mean no bound",
			params: url.Values{"limit": {"ten"}, "skip": {"-4"}},
			want:   TaskQuery{OwnerID: owner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTaskQuery(owner, tt.params))
		})
	}
}
