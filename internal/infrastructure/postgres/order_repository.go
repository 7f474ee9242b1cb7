package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, customer, warehouse_id, status, created_at, completed_at`

// Create persiste el pedido y sus líneas.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.Customer, order.WarehouseID, order.Status, order.CreatedAt, order.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert order %s: %w", order.ID, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert order %s: %w", order.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertItems(ctx, order.ID, order.Items)
}

// GetByID obtiene el pedido con sus líneas. nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene el pedido y bloquea su fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza customer, status y completed_at.
func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	query := `UPDATE orders SET customer = $2, status = $3, completed_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, order.ID, order.Customer, order.Status, order.CompletedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update order %s: %w", order.ID, domain.ErrNotFound)
	}
	return nil
}

// ReplaceItems borra las líneas actuales y crea las nuevas.
func (r *OrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return r.insertItems(ctx, orderID, items)
}

// List filtra y pagina pedidos, más recientes primero. Devuelve también el total sin paginar.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Customer != "" {
		add("customer ILIKE '%%' || $%d || '%%'", f.Customer)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.CreatedFrom != nil {
		add("created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= $%d", *f.CreatedTo)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Order, 0)
	byID := make(map[string]*entity.Order)
	ids := make([]string, 0)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.Customer, &o.WarehouseID, &o.Status, &o.CreatedAt, &o.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
		byID[o.ID] = &o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return list, total, nil
	}

	itemRows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, count
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it entity.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Count); err != nil {
			return nil, 0, fmt.Errorf("scan order item: %w", err)
		}
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return list, total, itemRows.Err()
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.Customer, &o.WarehouseID, &o.Status, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, count
		FROM order_items WHERE order_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Count); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// insertItems envía las líneas en un solo batch.
func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, it := range items {
		batch.Queue(`INSERT INTO order_items (id, order_id, product_id, count, position) VALUES ($1, $2, $3, $4, $5)`,
			it.ID, orderID, it.ProductID, it.Count, i)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("insert order item: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}
