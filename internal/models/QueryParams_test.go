package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParams_WithOverridesAndCopies(t *testing.T) {
	base := QueryParams{"interval": 7, "offset": 99}
	merged := base.With(QueryParams{"offset": 0, "limit": 10})

	assert.Equal(t, QueryParams{"interval": 7, "offset": 0, "limit": 10}, merged)
	assert.Equal(t, 99, base["offset"], "receiver must not change")
}

func TestQueryParams_WithOnNil(t *testing.T) {
	var p QueryParams
	assert.Equal(t, QueryParams{"limit": 5}, p.With(QueryParams{"limit": 5}))
}

func TestQueryParams_Clone(t *testing.T) {
	var nilParams QueryParams
	assert.Nil(t, nilParams.Clone())

	p := QueryParams{"interval": "7days"}
	c := p.Clone()
	c["interval"] = "30days"
	assert.Equal(t, "7days", p["interval"])
}
