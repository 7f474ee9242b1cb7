package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

func TestPgCode(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isForeignKeyViolation(unique))
	assert.True(t, isForeignKeyViolation(fk))
	assert.Empty(t, pgCode(errors.New("otro")))
}

// recordingQuerier guarda el SQL recibido; Query falla para cortar la consulta tras el COUNT.
type recordingQuerier struct {
	sql  []string
	args [][]any
}

var errStop = errors.New("stop")

func (q *recordingQuerier) record(sql string, args []any) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	return pgconn.CommandTag{}, nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	return nil, errStop
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.record(sql, args)
	return countRow{}
}

func (q *recordingQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

type countRow struct{}

func (countRow) Scan(dest ...any) error {
	*(dest[0].(*int)) = 3
	return nil
}

func TestMovementRepo_ListConstruyeConsulta(t *testing.T) {
	q := &recordingQuerier{}
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := NewMovementRepository(q).List(context.Background(), repository.MovementFilter{
		ProductID: "p1",
		Kind:      "order_created",
		From:      &from,
		SortField: "quantity_change",
		SortDesc:  true,
		Limit:     10,
		Offset:    20,
	})
	require.ErrorIs(t, err, errStop)
	require.Len(t, q.sql, 2)

	where := " WHERE product_id = $1 AND movement_kind = $2 AND created_at >= $3"
	assert.Equal(t, "SELECT COUNT(*) FROM movements"+where, q.sql[0])
	assert.Equal(t, "SELECT "+movementColumns+" FROM movements"+where+
		" ORDER BY quantity_change DESC, id DESC LIMIT $4 OFFSET $5", q.sql[1])
	assert.Equal(t, []any{"p1", "order_created", from, 10, 20}, q.args[1])
}

func TestMovementRepo_ListCampoDeOrdenNoPermitido(t *testing.T) {
	q := &recordingQuerier{}

	_, _, err := NewMovementRepository(q).List(context.Background(), repository.MovementFilter{
		SortField: "id; DROP TABLE movements",
	})
	require.ErrorIs(t, err, errStop)
	assert.Equal(t, "SELECT "+movementColumns+" FROM movements ORDER BY created_at ASC, id ASC", q.sql[1])
	assert.Empty(t, q.args[1])
}
