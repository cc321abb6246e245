package analytics

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the insight rule table.
type Rules struct {
	Milestones struct {
		Counts  []int  `yaml:"counts"`
		Title   string `yaml:"title"`
		Message string `yaml:"message"`
	} `yaml:"milestones"`
	Streaks struct {
		Thresholds []int  `yaml:"thresholds"`
		Title      string `yaml:"title"`
		Message    string `yaml:"message"`
	} `yaml:"streaks"`
	SpeedBurst struct {
		Count   int           `yaml:"count"`
		Window  time.Duration `yaml:"window"`
		Title   string        `yaml:"title"`
		Message string        `yaml:"message"`
	} `yaml:"speedBurst"`
	Idle struct {
		After   time.Duration `yaml:"after"`
		Title   string        `yaml:"title"`
		Message string        `yaml:"message"`
	} `yaml:"idle"`
}

// ParseRules decodes a YAML rule table and sorts its thresholds.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse insight rules: %w", err)
	}
	slices.Sort(r.Milestones.Counts)
	slices.Sort(r.Streaks.Thresholds)
	if r.SpeedBurst.Count > 0 && r.SpeedBurst.Window <= 0 {
		return Rules{}, fmt.Errorf("parse insight rules: speedBurst.window must be positive")
	}
	return r, nil
}

// LoadRules reads path, or the embedded defaults when path is empty.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return ParseRules(defaultRules)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read insight rules: %w", err)
	}
	return ParseRules(data)
}

// Insight kinds.
const (
	InsightMilestone  = "milestone"
	InsightStreak     = "streak"
	InsightSpeedBurst = "speed_burst"
	InsightIdle       = "idle"
)

// Insight is one rule that fired.
type Insight struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Value   int    `json:"value"`
}

// AgentSnapshot is everything the rules look at.
type AgentSnapshot struct {
	Now            time.Time
	TodayCount     int
	Streak         int
	BurstCount     int // completions within SpeedBurst.Window
	LastCompletion *time.Time
	Pending        int
}

func render(tmpl string, vars map[string]int) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", strconv.Itoa(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func highestReached(thresholds []int, value int) (int, bool) {
	reached, ok := 0, false
	for _, t := range thresholds {
		if value >= t {
			reached, ok = t, true
		}
	}
	return reached, ok
}

// Evaluate returns every insight that holds for the snapshot. When onlyFresh
// is set, milestone and streak rules fire only at the exact threshold, which
// is what notification polling wants.
func (r Rules) Evaluate(s AgentSnapshot, onlyFresh bool) []Insight {
	insights := make([]Insight, 0, 4)

	if m, ok := highestReached(r.Milestones.Counts, s.TodayCount); ok && (!onlyFresh || s.TodayCount == m) {
		insights = append(insights, Insight{
			Type: InsightMilestone, Level: "success", Title: r.Milestones.Title, Value: m,
			Message: render(r.Milestones.Message, map[string]int{"count": s.TodayCount}),
		})
	}

	if t, ok := highestReached(r.Streaks.Thresholds, s.Streak); ok && (!onlyFresh || s.Streak == t) {
		insights = append(insights, Insight{
			Type: InsightStreak, Level: "success", Title: r.Streaks.Title, Value: t,
			Message: render(r.Streaks.Message, map[string]int{"count": s.Streak}),
		})
	}

	if r.SpeedBurst.Count > 0 && s.BurstCount >= r.SpeedBurst.Count {
		insights = append(insights, Insight{
			Type: InsightSpeedBurst, Level: "info", Title: r.SpeedBurst.Title, Value: s.BurstCount,
			Message: render(r.SpeedBurst.Message, map[string]int{
				"count": s.BurstCount, "minutes": int(r.SpeedBurst.Window.Minutes()),
			}),
		})
	}

	if r.Idle.After > 0 && s.Pending > 0 {
		idleFor := time.Duration(-1)
		if s.LastCompletion != nil {
			idleFor = s.Now.Sub(*s.LastCompletion)
		}
		if s.LastCompletion == nil || idleFor >= r.Idle.After {
			minutes := int(r.Idle.After.Minutes())
			if idleFor > 0 {
				minutes = int(idleFor.Minutes())
			}
			insights = append(insights, Insight{
				Type: InsightIdle, Level: "warning", Title: r.Idle.Title, Value: minutes,
				Message: render(r.Idle.Message, map[string]int{"minutes": minutes, "pending": s.Pending}),
			})
		}
	}

	return insights
}
