package service

import (
	"anoa.com/kudoswall/internal/entity"
	"github.com/google/uuid"
)

const (
	CriteriaFirstKudos      = "firstKudos"
	CriteriaKudosReceived10 = "kudosReceived10"
	CriteriaKudosGiven10    = "kudosGiven10"
	CriteriaWeeklyMostKudos = "weeklyMostKudos"

	collectorThreshold = 10
	giverThreshold     = 10
)

// Input is everything an eligibility predicate may look at.
// Received and Sent are All partitioned by the user.
type Input struct {
	UserID   uuid.UUID
	Received []entity.Kudos
	Sent     []entity.Kudos
	All      []entity.Kudos
	Week     Window
}

type Definition struct {
	Name        string
	Description string
	ImageURL    string
	Criteria    string
	Eligible    func(Input) bool
}

func (d Definition) Badge() entity.Badge {
	return entity.Badge{
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Criteria:    d.Criteria,
	}
}

// Evaluation order is the slice order.
var catalog = []Definition{
	{
		Name:        "First Kudos",
		Description: "Received your first Kudos!",
		ImageURL:    "https://api.dicebear.com/7.x/shapes/svg?seed=first-kudos",
		Criteria:    CriteriaFirstKudos,
		Eligible:    func(in Input) bool { return len(in.Received) >= 1 },
	},
	{
		Name:        "Kudos Collector",
		Description: "Received 10 Kudos!",
		ImageURL:    "https://api.dicebear.com/7.x/shapes/svg?seed=kudos-collector",
		Criteria:    CriteriaKudosReceived10,
		Eligible:    func(in Input) bool { return len(in.Received) >= collectorThreshold },
	},
	{
		Name:        "Kind Colleague",
		Description: "Wrote 10 Kudos!",
		ImageURL:    "https://api.dicebear.com/7.x/shapes/svg?seed=kudos-giver",
		Criteria:    CriteriaKudosGiven10,
		Eligible:    func(in Input) bool { return len(in.Sent) >= giverThreshold },
	},
	{
		Name:        "Star of the Week",
		Description: "Received the most Kudos this week!",
		ImageURL:    "https://api.dicebear.com/7.x/shapes/svg?seed=weekly-star",
		Criteria:    CriteriaWeeklyMostKudos,
		Eligible: func(in Input) bool {
			top, ok := TopReceiver(in.All, in.Week)
			return ok && top.UserID == in.UserID
		},
	},
}

// Catalog returns a copy of the badge definitions in evaluation order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}
