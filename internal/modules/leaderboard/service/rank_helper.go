package service

import "math"

// RecognitionStatus summarises how much recognition a user has collected.
// Tier is based on all-time kudos received and never demotes; WeeklyLabel
// reflects the current week only.
type RecognitionStatus struct {
	Tier           string  `json:"tier"`
	NextTier       string  `json:"next_tier"`
	KudosReceived  int64   `json:"kudos_received"`
	TargetKudos    int64   `json:"target_kudos"`
	Progress       float64 `json:"progress"`
	WeeklyReceived int64   `json:"weekly_received"`
	WeeklyLabel    string  `json:"weekly_label"`
}

// All-time tier thresholds, in kudos received.
const (
	KudosLegend      = 100
	KudosInspiring   = 40
	KudosValued      = 15
	KudosAppreciated = 5
	KudosNewcomer    = 0
)

// Weekly activity thresholds, in kudos received this week.
const (
	WeeklyOnFire   = 10
	WeeklyTrending = 5
	WeeklyActive   = 2
)

const maxTier = "Max Level"

var tiers = []struct {
	name  string
	floor int64
}{
	{"Legend", KudosLegend},
	{"Inspiring", KudosInspiring},
	{"Valued", KudosValued},
	{"Appreciated", KudosAppreciated},
	{"Newcomer", KudosNewcomer},
}

func GetRecognitionStatus(received, weekly int64) RecognitionStatus {
	status := RecognitionStatus{KudosReceived: received, WeeklyReceived: weekly}

	for i, tier := range tiers {
		if received < tier.floor {
			continue
		}
		status.Tier = tier.name
		if i == 0 {
			status.NextTier = maxTier
			status.TargetKudos = tier.floor
			status.Progress = 100
		} else {
			next := tiers[i-1]
			status.NextTier = next.name
			status.TargetKudos = next.floor
			status.Progress = float64(received) / float64(next.floor) * 100
		}
		break
	}

	switch {
	case weekly >= WeeklyOnFire:
		status.WeeklyLabel = "🔥 On Fire!"
	case weekly >= WeeklyTrending:
		status.WeeklyLabel = "⚡ Trending"
	case weekly >= WeeklyActive:
		status.WeeklyLabel = "📈 Active"
	}

	status.Progress = math.Round(status.Progress*100) / 100
	return status
}
