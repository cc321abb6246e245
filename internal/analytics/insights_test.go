package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func defaultTestRules(t *testing.T) Rules {
	t.Helper()
	rules, err := LoadRules("")
	require.NoError(t, err)
	return rules
}

func insightTypes(insights []Insight) []string {
	out := make([]string, 0, len(insights))
	for _, in := range insights {
		out = append(out, in.Type)
	}
	return out
}

func TestDefaultRulesParse(t *testing.T) {
	rules := defaultTestRules(t)
	require.Equal(t, []int{10, 25, 50, 100}, rules.Milestones.Counts)
	require.Equal(t, []int{3, 5, 10}, rules.Streaks.Thresholds)
	require.Equal(t, 15*time.Minute, rules.SpeedBurst.Window)
	require.Equal(t, time.Hour, rules.Idle.After)
}

func TestParseRulesSortsThresholds(t *testing.T) {
	rules, err := ParseRules([]byte("milestones:\n  counts: [50, 10]\nstreaks:\n  thresholds: [7, 2]\n"))
	require.NoError(t, err)
	require.Equal(t, []int{10, 50}, rules.Milestones.Counts)
	require.Equal(t, []int{2, 7}, rules.Streaks.Thresholds)
}

func TestParseRulesRejectsBurstWithoutWindow(t *testing.T) {
	_, err := ParseRules([]byte("speedBurst:\n  count: 3\n"))
	require.Error(t, err)
}

func TestEvaluateMilestoneAndStreak(t *testing.T) {
	rules := defaultTestRules(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	last := now.Add(-time.Minute)

	snap := AgentSnapshot{Now: now, TodayCount: 27, Streak: 5, LastCompletion: &last, Pending: 3}
	all := rules.Evaluate(snap, false)
	require.Equal(t, []string{InsightMilestone, InsightStreak}, insightTypes(all))
	require.Equal(t, 25, all[0].Value)
	require.Contains(t, all[0].Message, "27")

	// Past the threshold, notifications stay quiet.
	fresh := rules.Evaluate(snap, true)
	require.Equal(t, []string{InsightStreak}, insightTypes(fresh))
}

func TestEvaluateSpeedBurst(t *testing.T) {
	rules := defaultTestRules(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	last := now.Add(-time.Minute)

	insights := rules.Evaluate(AgentSnapshot{Now: now, BurstCount: 6, LastCompletion: &last}, true)
	require.Equal(t, []string{InsightSpeedBurst}, insightTypes(insights))
	require.Contains(t, insights[0].Message, "15 minuten")
}

func TestEvaluateIdle(t *testing.T) {
	rules := defaultTestRules(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	last := now.Add(-90 * time.Minute)

	insights := rules.Evaluate(AgentSnapshot{Now: now, LastCompletion: &last, Pending: 4}, false)
	require.Equal(t, []string{InsightIdle}, insightTypes(insights))
	require.Equal(t, 90, insights[0].Value)
	require.Contains(t, insights[0].Message, "4")

	// Nothing pending means nothing to nag about.
	require.Empty(t, rules.Evaluate(AgentSnapshot{Now: now, LastCompletion: &last}, false))

	// Never completed anything yet reports the configured threshold.
	never := rules.Evaluate(AgentSnapshot{Now: now, Pending: 2}, false)
	require.Equal(t, 60, never[0].Value)
}
