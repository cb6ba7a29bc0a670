package ranking

import "strconv"

// Leaderboard keys. One key holds one totally-ordered-by-score member set.
const (
	keyNovelViewAll    = "ranking:novel:view:all"
	keyNovelVoteAll    = "ranking:novel:vote:all"
	keyNovelPattern    = "ranking:novel:*"
	keyUserExp         = "ranking:user:exp"
	keyAuthorVote      = "ranking:author:vote"
	keyAuthorView      = "ranking:author:view"
	keyAuthorNovelNum  = "ranking:author:novelNum"
	novelViewKeyPrefix = "ranking:novel:view:"
	novelVoteKeyPrefix = "ranking:novel:vote:"
)

// novelKey selects the leaderboard for a novel ranking axis. categoryID <= 0
// selects the all-categories board.
func novelKey(sortType string, categoryID int) string {
	prefix := novelVoteKeyPrefix
	if sortType == SortByView {
		prefix = novelViewKeyPrefix
	}
	if categoryID <= 0 {
		return prefix + "all"
	}
	return prefix + strconv.Itoa(categoryID)
}

// authorKey selects the leaderboard for an author ranking axis.
func authorKey(sortType string) string {
	switch sortType {
	case SortByView:
		return keyAuthorView
	case SortByNovelNum:
		return keyAuthorNovelNum
	default:
		return keyAuthorVote
	}
}

// Sort types accepted by the ranking endpoints.
const (
	SortByView     = "view"
	SortByVote     = "vote"
	SortByNovelNum = "novelNum"
)
