package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/widarcfg/internal/execution"
)

var rowColumns = strings.Join(execution.Columns, ", ")

// SaveRows replaces the stored rows of every observation present in rows.
// Observations not in rows are left alone.
func (s *Store) SaveRows(ctx context.Context, runID string, rows []execution.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cleared := make(map[string]bool)
	for _, r := range rows {
		if cleared[r.Label] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subband_rows WHERE label = ?`, r.Label); err != nil {
			return fmt.Errorf("failed to clear rows of %s: %w", r.Label, err)
		}
		cleared[r.Label] = true
	}

	insert := fmt.Sprintf(`INSERT INTO subband_rows (run_id, %s) VALUES (?%s)`,
		rowColumns, strings.Repeat(", ?", len(execution.Columns)))
	for _, r := range rows {
		args := append([]any{runID}, rowArgs(r)...)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert row %+v: %w", r.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	s.logger.Debug("saved rows", "run_id", runID, "rows", len(rows), "observations", len(cleared))
	return nil
}

// ListRows returns stored rows ordered by key. An empty label returns
// every row.
func (s *Store) ListRows(ctx context.Context, label string) ([]execution.Row, error) {
	query := fmt.Sprintf(`SELECT %s FROM subband_rows`, rowColumns)
	var args []any
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY label, lo_ix, bb_ix, sb_ix`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []execution.Row
	for rows.Next() {
		var (
			r           execution.Row
			mode, eight int
		)
		err := rows.Scan(
			&r.Label, &r.Year, &r.Month, &r.Code, &r.DBID, &r.MJD,
			&r.LoIndex, &r.Baseband, &r.Subband,
			&r.MaxConfig, &r.MaxBaseline,
			&mode, &r.LoFlag, &r.Receiver,
			&r.BasebandBW, &r.InQuant, &eight,
			&r.NPol, &r.NChan, &r.Recirc, &r.MinIntegTime, &r.IntegTime,
			&r.SubbandBW, &r.SubbandCF, &r.NBlb,
			&r.SampleFreq, &r.OptFreq, &r.SkyFreq, &r.ShiftFreq, &r.BasebandCF,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.LoMode, r.IsEightBit = mode != 0, eight != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRows returns the number of stored rows.
func (s *Store) CountRows(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subband_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

func rowArgs(r execution.Row) []any {
	return []any{
		r.Label, r.Year, r.Month, r.Code, r.DBID, r.MJD,
		r.LoIndex, r.Baseband, r.Subband,
		r.MaxConfig, r.MaxBaseline,
		boolInt(r.LoMode), r.LoFlag, r.Receiver,
		r.BasebandBW, r.InQuant, boolInt(r.IsEightBit),
		r.NPol, r.NChan, r.Recirc, r.MinIntegTime, r.IntegTime,
		r.SubbandBW, r.SubbandCF, r.NBlb,
		r.SampleFreq, r.OptFreq, r.SkyFreq, r.ShiftFreq, r.BasebandCF,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
