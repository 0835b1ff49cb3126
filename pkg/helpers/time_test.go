package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHumanizeSince(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0 seconds ago"},
		{time.Second, "1 second ago"},
		{59 * time.Second, "59 seconds ago"},
		{time.Minute, "1 minute ago"},
		{2 * time.Hour, "2 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{29 * 24 * time.Hour, "29 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{360 * 24 * time.Hour, "1 year ago"},
		{3 * 360 * 24 * time.Hour, "3 years ago"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, HumanizeSince(now.Add(-tc.ago), now))
	}
	// timestamps in the future clamp to zero
	require.Equal(t, "0 seconds ago", HumanizeSince(now.Add(time.Hour), now))
}

func TestHumanizeSince_ZeroIsPlural(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// only exactly one takes the singular; zero reads "0 seconds", not "0 second"
	require.Equal(t, "0 seconds ago", HumanizeSince(now, now))
	require.Equal(t, "0 seconds ago", HumanizeSince(now.Add(-999*time.Millisecond), now))
	require.NotEqual(t, "0 second ago", HumanizeSince(now, now))
}
