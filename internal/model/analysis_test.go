package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Interest
	}{
		{"hot", InterestHot},
		{"HOT", InterestHot},
		{" warm ", InterestWarm},
		{"Cold", InterestCold},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInterest(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInterestRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "lukewarm", "hot lead", "1"} {
		_, err := ParseInterest(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestAnalysisClampScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		score, conv    int
		wantScore      int
		wantConversion int
	}{
		{"in range", 85, 40, 85, 40},
		{"above", 130, 250, 100, 100},
		{"below", -5, -1, 0, 0},
		{"bounds", 100, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := Analysis{Score: tt.score, ConversionProb: tt.conv, Interest: InterestWarm}
			a.ClampScores()
			assert.Equal(t, tt.wantScore, a.Score)
			assert.Equal(t, tt.wantConversion, a.ConversionProb)
		})
	}
}
