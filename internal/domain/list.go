package domain

// List is an ordered column of cards within a board. Position is the dense
// 0-based rank among the board's lists: the set of positions on a board is
// always exactly {0..N-1} with no gaps and no duplicates.
type List struct {
	Entity
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}
