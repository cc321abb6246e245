// Package analytics computes leaderboards, streaks, rule-based insights and the
// potential-level accuracy score from lead activity.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// StreakWindow is how many recent completions a streak looks at.
const StreakWindow = 50

// Streak counts the completions at the head of times (newest first) whose
// successive gaps all stay under gap.
func Streak(times []time.Time, gap time.Duration) int {
	if len(times) == 0 {
		return 0
	}
	if len(times) > StreakWindow {
		times = times[:StreakWindow]
	}
	streak := 1
	for i := 1; i < len(times); i++ {
		if times[i-1].Sub(times[i]) >= gap {
			break
		}
		streak++
	}
	return streak
}

// LeaderboardEntry is one agent's position.
type LeaderboardEntry struct {
	AgentID   uuid.UUID `json:"agentId"`
	AgentName string    `json:"agentName"`
	Count     int       `json:"count"`
	Rank      int       `json:"rank"`
}

// RankLeaderboard sorts by count descending, then name, then id, and numbers
// the result 1..n. Equal counts never share a rank.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.AgentName != b.AgentName {
			return a.AgentName < b.AgentName
		}
		return a.AgentID.String() < b.AgentID.String()
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// WindowStart is midnight, in loc, of the first day of a days-long window
// ending today.
func WindowStart(now time.Time, days int, loc *time.Location) time.Time {
	if days < 1 {
		days = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -(days - 1))
}

// Outcome is one assessed completion: what the agent predicted and what happened.
type Outcome struct {
	Potential string
	Status    string
	Count     int
}

var oraclePoints = map[string]map[string]int{
	"high":   {"sold": 100, "appointment": 50, "rejected": -20},
	"medium": {"sold": 50, "appointment": 25},
	"low":    {"sold": -100, "appointment": -100, "rejected": 20},
}

var oracleMaxAbs = map[string]int{"high": 100, "medium": 50, "low": 100}

// OracleResult reports how well potential levels predicted outcomes.
type OracleResult struct {
	Score   float64 `json:"score"`
	Raw     int     `json:"raw"`
	MaxAbs  int     `json:"maxAbs"`
	Samples int     `json:"samples"`
}

// OracleScore maps the summed points onto 0..100 where 50 is neutral.
// Unassessed leads are skipped; no samples scores 50.
func OracleScore(outcomes []Outcome) OracleResult {
	var res OracleResult
	for _, o := range outcomes {
		maxAbs, assessed := oracleMaxAbs[o.Potential]
		if !assessed || o.Count <= 0 {
			continue
		}
		res.Raw += oraclePoints[o.Potential][o.Status] * o.Count
		res.MaxAbs += maxAbs * o.Count
		res.Samples += o.Count
	}
	if res.MaxAbs == 0 {
		res.Score = 50
		return res
	}
	score := 50 + 50*float64(res.Raw)/float64(res.MaxAbs)
	res.Score = min(max(score, 0), 100)
	return res
}

// ConversionRate is (sold + appointment) / completed, 0 when nothing completed.
func ConversionRate(sold, appointment, completed int) float64 {
	if completed == 0 {
		return 0
	}
	return float64(sold+appointment) / float64(completed)
}
