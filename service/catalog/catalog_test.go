package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/curator/model"
)

func TestParseScope(t *testing.T) {
	type testCase struct {
		name   string
		scope  string
		expect Filter
	}
	testCases := []testCase{
		{name: "empty", scope: "", expect: Filter{}},
		{name: "all", scope: "ALL", expect: Filter{}},
		{name: "category", scope: "science", expect: Filter{Category: "science"}},
		{name: "glob", scope: "science/**", expect: Filter{Pattern: "science/**"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ParseScope(tc.scope))
		})
	}
}

func TestFilter_Match(t *testing.T) {
	type testCase struct {
		name   string
		filter Filter
		ref    model.Ref
		expect bool
	}
	testCases := []testCase{
		{name: "all", filter: Filter{}, ref: model.Ref{Category: "a", Key: "b"}, expect: true},
		{name: "category hit", filter: Filter{Category: "a"}, ref: model.Ref{Category: "a", Key: "b"}, expect: true},
		{name: "category miss", filter: Filter{Category: "x"}, ref: model.Ref{Category: "a", Key: "b"}},
		{name: "glob hit", filter: Filter{Pattern: "history/**"}, ref: model.Ref{Category: "history", Key: "rome/empire"}, expect: true},
		{name: "glob prefix", filter: Filter{Pattern: "*/photo*"}, ref: model.Ref{Category: "science", Key: "photosynthesis"}, expect: true},
		{name: "glob miss", filter: Filter{Pattern: "science/*"}, ref: model.Ref{Category: "history", Key: "rome"}},
		{name: "bad glob", filter: Filter{Pattern: "[a"}, ref: model.Ref{Category: "a", Key: "b"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.filter.Match(tc.ref))
		})
	}
}
