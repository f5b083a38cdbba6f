package domain

import "strings"

// Tier is a subscription level.
type Tier string

const (
	TierFree   Tier = "free"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Unlimited is the allowance sentinel for plans without a daily cap.
const Unlimited = -1

// Plan describes a subscription tier.
type Plan struct {
	ID              Tier     `json:"id"`
	Name            string   `json:"name"`
	Price           int64    `json:"price"`           // rupees
	QuestionsPerDay int      `json:"questionsPerDay"` // -1 = unlimited
	DurationDays    int      `json:"durationDays"`    // 0 = permanent
	Features        []string `json:"features"`
}

// AmountMinor returns the plan price in paise.
func (p Plan) AmountMinor() int64 {
	return p.Price * 100
}

// IsPaid reports whether the plan can be purchased.
func (p Plan) IsPaid() bool {
	return p.Price > 0
}

var plans = []Plan{
	{
		ID:              TierFree,
		Name:            "Free Plan",
		Price:           0,
		QuestionsPerDay: 1,
		Features:        []string{"1 question per day", "Basic support", "Access to community answers"},
	},
	{
		ID:              TierBronze,
		Name:            "Bronze Plan",
		Price:           100,
		QuestionsPerDay: 5,
		DurationDays:    30,
		Features:        []string{"5 questions per day", "Priority support", "Access to community answers", "No ads"},
	},
	{
		ID:              TierSilver,
		Name:            "Silver Plan",
		Price:           300,
		QuestionsPerDay: 10,
		DurationDays:    30,
		Features: []string{
			"10 questions per day", "Priority support", "Access to community answers",
			"No ads", "Featured questions",
		},
	},
	{
		ID:              TierGold,
		Name:            "Gold Plan",
		Price:           1000,
		QuestionsPerDay: Unlimited,
		DurationDays:    30,
		Features: []string{
			"Unlimited questions", "24/7 Premium support", "Access to community answers",
			"No ads", "Featured questions", "Private code review", "Early access to new features",
		},
	},
}

// AvailablePlans returns all plans, free first.
func AvailablePlans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan returns the plan for a tier id.
func LookupPlan(id string) (Plan, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range plans {
		if string(p.ID) == id {
			return p, true
		}
	}
	return Plan{}, false
}

// GetPlan returns the plan for a tier, or the free plan if not found.
func GetPlan(t Tier) Plan {
	if p, ok := LookupPlan(string(t)); ok {
		return p
	}
	return plans[0]
}
