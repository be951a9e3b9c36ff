package crossing

import "github.com/samber/lo"

// QueueLengths counts, per direction, the vehicles that have not yet reached
// the queue limit (EntryThreshold - 5). Every direction is present in the result.
func QueueLengths(vehicles []Vehicle, cfg Config) map[Direction]int {
	limit := cfg.QueueLimit()
	queued := lo.CountValuesBy(lo.Filter(vehicles, func(v Vehicle, _ int) bool {
		return v.Position <= limit
	}), func(v Vehicle) Direction {
		return v.Direction
	})

	queues := make(map[Direction]int, len(Directions))
	for _, d := range Directions {
		queues[d] = queued[d]
	}
	return queues
}

// Condition classifies overall demand at the junction
type Condition string

const (
	LightTraffic    Condition = "light"
	ModerateTraffic Condition = "moderate"
	HeavyTraffic    Condition = "heavy"
)

// Advisory is a human-readable suggestion derived from the traffic condition.
// It is informational only and never feeds the controller.
type Advisory struct {
	Condition Condition `json:"condition"`
	Queued    int       `json:"queued"`
	Advice    string    `json:"advice"`
}

// Classify turns per-direction queues into an advisory
func Classify(queues map[Direction]int, cfg Config) Advisory {
	total := lo.Sum(lo.Values(queues))
	switch {
	case total >= cfg.HeavyQueue:
		return Advisory{Condition: HeavyTraffic, Queued: total, Advice: "extend green duration"}
	case total >= cfg.ModerateQueue:
		return Advisory{Condition: ModerateTraffic, Queued: total, Advice: "balance green and red durations"}
	default:
		return Advisory{Condition: LightTraffic, Queued: total, Advice: "normal signal cycle"}
	}
}
