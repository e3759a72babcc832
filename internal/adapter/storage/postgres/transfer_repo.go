package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransferRepo implements ports.TransferRepository on an append-only table.
// Seq comes from a BIGSERIAL column, so commit order totally orders records.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Append inserts one record within the ledger transaction and reads back the
// assigned sequence number.
func (r *TransferRepo) Append(ctx context.Context, tx pgx.Tx, rec *domain.TransferRecord) error {
	query := `INSERT INTO transfer_records (id, from_id, to_id, kind, amount, balance_after_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING seq`

	err := tx.QueryRow(ctx, query,
		rec.ID, rec.FromID, rec.ToID, rec.Kind, rec.Amount, rec.BalanceAfterTo, rec.CreatedAt,
	).Scan(&rec.Seq)
	if err != nil {
		return fmt.Errorf("append transfer record: %w", err)
	}
	return nil
}

// GetRecord fetches a transfer record by UUID.
func (r *TransferRepo) GetRecord(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	query := `SELECT id, seq, from_id, to_id, kind, amount, balance_after_to, created_at
		FROM transfer_records WHERE id = $1`

	rec := &domain.TransferRecord{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Seq, &rec.FromID, &rec.ToID, &rec.Kind, &rec.Amount, &rec.BalanceAfterTo, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer record by id: %w", err)
	}
	return rec, nil
}

// ListForAccount fetches an account's records in ascending seq order with
// pagination, plus the total count.
func (r *TransferRepo) ListForAccount(ctx context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("(from_id = $%d OR to_id = $%d)", argIdx, argIdx))
	args = append(args, params.AccountID)
	argIdx++

	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transfer_records %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfer records: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, seq, from_id, to_id, kind, amount, balance_after_to, created_at
		FROM transfer_records %s ORDER BY seq ASC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfer records: %w", err)
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		rec := domain.TransferRecord{}
		err := rows.Scan(&rec.ID, &rec.Seq, &rec.FromID, &rec.ToID, &rec.Kind, &rec.Amount, &rec.BalanceAfterTo, &rec.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transfer record rows: %w", err)
	}

	return records, total, nil
}

// SumForAccount returns the signed sum of the account's records: credits
// where it is the receiver, debits where it is the sender. The result must
// reconcile exactly with the stored balance.
func (r *TransferRepo) SumForAccount(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN to_id = $1 THEN amount ELSE -amount END), 0)
		FROM transfer_records WHERE from_id = $1 OR to_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transfer records: %w", err)
	}
	return sum, nil
}
