package parser

import (
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    QueryType
		wantErr bool
	}{
		{"AND", QueryAND, false},
		{"and", QueryAND, false},
		{"Or", QueryOR, false},
		{" OR ", QueryOR, false},
		{"XYZ", QueryAND, true},
		{"", QueryAND, true},
		{"NOT", QueryAND, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidSearchMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	plan, err := Parse("  Love   blind\tthee ", "or")
	require.NoError(t, err)
	assert.Equal(t, []string{"Love", "blind", "thee"}, plan.Words)
	assert.Equal(t, QueryOR, plan.Type)
	assert.Equal(t, "OR", plan.Type.String())

	empty, err := Parse("   ", "AND")
	require.NoError(t, err)
	assert.Empty(t, empty.Words)

	_, err = Parse("love", "XYZ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSearchMode)
}
