package models

// UserProfile is the user directory projection. Level and CurrentExp are
// filled from gamification data when the profile is served in a ranking.
type UserProfile struct {
	UUID       string `json:"uuid"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	IsAuthor   bool   `json:"isAuthor,omitempty"`
	Level      int    `json:"level"`
	CurrentExp int    `json:"currentExp"`
}

// GamificationStats is one user's progression snapshot from the
// gamification service.
type GamificationStats struct {
	UserID               string `json:"userId"`
	Level                int    `json:"level"`
	CurrentExp           int    `json:"currentExp"`
	TotalExpForNextLevel int    `json:"totalExpForNextLevel,omitempty"`
	YuanBalance          int    `json:"yuanBalance,omitempty"`
}

// Author aggregates a writer's catalog footprint for the author
// leaderboards.
type Author struct {
	UUID         string `json:"uuid"`
	Username     string `json:"username"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	NovelNum     int    `json:"novelNum"`
	TotalViewCnt int64  `json:"totalViewCnt"`
	TotalVoteCnt int64  `json:"totalVoteCnt"`
}
