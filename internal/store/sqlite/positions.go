package sqlite

import (
	"context"
	"database/sql"

	"github.com/tasktiles/tasktiles-server/internal/position"
)

// applyShift executes one planned position shift against a sibling scope
// (cards in a list, or lists on a board). Callers run every shift of a plan
// inside the same transaction as the final set, so concurrent movers never
// see a half-applied plan.
func applyShift(ctx context.Context, tx *sql.Tx, table, scopeCol, scopeID string, sh position.Shift) error {
	if sh.Delta == 0 {
		return nil
	}
	if sh.Hi == position.Unbounded {
		_, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET position = position + ? WHERE `+scopeCol+` = ? AND position >= ?`,
			sh.Delta, scopeID, sh.Lo)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET position = position + ? WHERE `+scopeCol+` = ? AND position BETWEEN ? AND ?`,
		sh.Delta, scopeID, sh.Lo, sh.Hi)
	return err
}

// countSiblings returns the sibling count inside a transaction.
func countSiblings(ctx context.Context, tx *sql.Tx, table, scopeCol, scopeID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE `+scopeCol+` = ?`, scopeID).Scan(&n)
	return n, err
}
