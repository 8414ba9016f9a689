package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeverityFor(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, SeverityLow},
		{0.39, SeverityLow},
		{0.40, SeverityMedium},
		{0.69, SeverityMedium},
		{0.70, SeverityHigh},
		{1.0, SeverityHigh},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, SeverityFor(tc.score), "score %.2f", tc.score)
	}
}
