package models

// Novel is the detailed novel projection served by the content service.
// CategoryID <= 0 means the novel is uncategorized.
type Novel struct {
	ID             int     `json:"id"`
	UUID           string  `json:"uuid,omitempty"`
	Title          string  `json:"title"`
	AuthorID       string  `json:"authorId,omitempty"`
	AuthorUsername string  `json:"authorUsername,omitempty"`
	AvgRating      float64 `json:"avgRating,omitempty"`
	ViewCnt        int64   `json:"viewCnt"`
	VoteCnt        int64   `json:"voteCnt"`
	CoverImgURL    string  `json:"coverImgUrl,omitempty"`
	CategoryID     int     `json:"categoryId,omitempty"`
	CategoryName   string  `json:"categoryName,omitempty"`
	Synopsis       string  `json:"synopsis,omitempty"`
	IsCompleted    bool    `json:"isCompleted"`
}

// NovelRank describes a novel's best position across the leaderboards.
// Ranked is false when the novel is on no leaderboard at all, which is a
// valid state for new or low-traffic novels.
type NovelRank struct {
	NovelID     int     `json:"novelId"`
	Ranked      bool    `json:"ranked"`
	Rank        int64   `json:"rank,omitempty"`
	Score       float64 `json:"score,omitempty"`
	RankingType string  `json:"rankingType,omitempty"`
}
