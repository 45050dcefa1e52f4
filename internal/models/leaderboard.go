package models

type LeaderboardItem struct {
	Username  string  `json:"username"`
	CreatorID int64   `json:"creator_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
}
