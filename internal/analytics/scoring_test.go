package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStreak(t *testing.T) {
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	gap := 5 * time.Minute

	require.Equal(t, 0, Streak(nil, gap))
	require.Equal(t, 1, Streak([]time.Time{base}, gap))

	times := []time.Time{
		base,
		base.Add(-4 * time.Minute),
		base.Add(-8 * time.Minute),
		base.Add(-20 * time.Minute),
		base.Add(-21 * time.Minute),
	}
	require.Equal(t, 3, Streak(times, gap))

	// A gap of exactly the threshold breaks the streak.
	require.Equal(t, 1, Streak([]time.Time{base, base.Add(-gap)}, gap))
}

func TestStreakIsCappedByWindow(t *testing.T) {
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	times := make([]time.Time, StreakWindow+20)
	for i := range times {
		times[i] = base.Add(-time.Duration(i) * time.Minute)
	}
	require.Equal(t, StreakWindow, Streak(times, 5*time.Minute))
}

func TestRankLeaderboard(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	ranked := RankLeaderboard([]LeaderboardEntry{
		{AgentID: a, AgentName: "Sanne", Count: 4},
		{AgentID: b, AgentName: "Bram", Count: 9},
		{AgentID: c, AgentName: "Anouk", Count: 4},
	})

	require.Len(t, ranked, 3)
	require.Equal(t, b, ranked[0].AgentID)
	require.Equal(t, 1, ranked[0].Rank)
	require.Equal(t, "Anouk", ranked[1].AgentName)
	require.Equal(t, 2, ranked[1].Rank)
	require.Equal(t, "Sanne", ranked[2].AgentName)
	require.Equal(t, 3, ranked[2].Rank)
}

func TestWindowStartUsesLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	// 23:30 UTC on 1 March is already 2 March in Amsterdam.
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), WindowStart(now, 1, loc))
	require.Equal(t, time.Date(2026, 2, 24, 0, 0, 0, 0, loc), WindowStart(now, 7, loc))
	require.Equal(t, WindowStart(now, 1, loc), WindowStart(now, 0, loc))
}

func TestOracleScore(t *testing.T) {
	empty := OracleScore(nil)
	require.Equal(t, 50.0, empty.Score)
	require.Zero(t, empty.Samples)

	perfect := OracleScore([]Outcome{{Potential: "high", Status: "sold", Count: 2}})
	require.Equal(t, 100.0, perfect.Score)
	require.Equal(t, 200, perfect.Raw)

	worst := OracleScore([]Outcome{{Potential: "low", Status: "sold", Count: 1}})
	require.Equal(t, 0.0, worst.Score)

	rightlyLow := OracleScore([]Outcome{{Potential: "low", Status: "rejected", Count: 1}})
	require.Equal(t, 20, rightlyLow.Raw)
	require.Equal(t, 60.0, rightlyLow.Score)

	mixed := OracleScore([]Outcome{
		{Potential: "high", Status: "rejected", Count: 1},
		{Potential: "medium", Status: "appointment", Count: 1},
		{Potential: "unknown", Status: "sold", Count: 5},
		{Potential: "low", Status: "no_answer", Count: 1},
		{Potential: "low", Status: "rejected", Count: 1},
	})
	require.Equal(t, 4, mixed.Samples)
	require.Equal(t, 25, mixed.Raw)
	require.Equal(t, 350, mixed.MaxAbs)
	require.InDelta(t, 50+50*25.0/350, mixed.Score, 0.0001)
}

func TestConversionRate(t *testing.T) {
	require.Zero(t, ConversionRate(3, 2, 0))
	require.InDelta(t, 0.5, ConversionRate(1, 4, 10), 1e-9)
}
