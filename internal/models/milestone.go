package models

type Milestone struct {
	Threshold   int        `json:"threshold"`
	Kind        RewardKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// Milestones is ascending by threshold.
var Milestones = []Milestone{
	{Threshold: 100, Kind: REWARD_KIND_BADGE, Title: "Rising Star", Description: "Reached 100 downloads!"},
	{Threshold: 500, Kind: REWARD_KIND_FEATURE, Title: "Featured Creator", Description: "Your components are featured!"},
	{Threshold: 1000, Kind: REWARD_KIND_CERTIFICATE, Title: "Master Creator", Description: "Digital certificate of excellence"},
	{Threshold: 5000, Kind: REWARD_KIND_GIFT_PACKAGE, Title: "Legend Status", Description: "Exclusive gift package!"},
}

type MilestoneCrossing struct {
	Milestone Milestone `json:"milestone"`
	Reward    *Reward   `json:"reward"`
}
