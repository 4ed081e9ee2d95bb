package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrTotalMismatch     = errors.New("order total mismatch")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// DB adalah subset pgxpool.Pool yang dipakai repo; pgxmock juga
// memenuhinya, jadi repo bisa dites tanpa Postgres.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct{ DB DB }

// CreateOrder membuat order secara atomik: lock baris produk, cek stok,
// hitung ulang total dari harga di DB, insert order + item, kurangi stok.
// Semua atau tidak sama sekali; kalau gagal, tidak ada order yang dibuat.
// Total dari client hanya advisory — selisih dengan total DB menggagalkan
// order, tidak direkonsiliasi diam-diam.
func (r *Repo) CreateOrder(ctx context.Context, p CreateOrderParams) (string, error) {
	if len(p.Items) == 0 {
		return "", errors.New("no items")
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var total int64
	prices := make(map[string]int64, len(p.Items))
	for _, it := range p.Items {
		if it.Quantity <= 0 {
			return "", fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
		var price int64
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT price, stock FROM products WHERE id=$1 FOR UPDATE`,
			it.ProductID).Scan(&price, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return "", err
		}
		if stock < it.Quantity {
			return "", fmt.Errorf("%w: product %s (diminta %d, tersedia %d)",
				ErrOutOfStock, it.ProductID, it.Quantity, stock)
		}
		prices[it.ProductID] = price
		total += price * int64(it.Quantity)
	}

	if p.Total != total {
		return "", fmt.Errorf("%w: client %d, server %d", ErrTotalMismatch, p.Total, total)
	}

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_name, phone, address, note, status, total)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`, orderID, p.CustomerName, p.Phone, p.Address, p.Note, total)
	if err != nil {
		return "", err
	}

	for _, it := range p.Items {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2 WHERE id=$1`,
			it.ProductID, it.Quantity); err != nil {
			return "", err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)`,
			orderID, it.ProductID, it.Quantity, prices[it.ProductID]); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orderID, nil
}

// UpdateStatus memindahkan status order sesuai mesin status di status.go.
// Cancel mengembalikan stok item order (kebalikan pengurangan saat create).
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return err
	}
	from := Status(cur)
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, to); err != nil {
		return err
	}

	if to == StatusCancelled {
		if err := restock(ctx, tx, orderID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func restock(ctx context.Context, tx pgx.Tx, orderID string) error {
	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type rec struct {
		pid string
		qty int
	}
	var recs []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.pid, &x.qty); err != nil {
			return err
		}
		recs = append(recs, x)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, x := range recs {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock + $2 WHERE id=$1`, x.pid, x.qty); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// ListOrders mengembalikan semua order terbaru dulu, lengkap dengan item
// dan nama produknya, untuk tab Orders di dashboard admin.
func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_name, phone, address, note, status, total, created_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Address,
			&o.Note, &status, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.orderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) orderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.product_id, p.name, p.image, oi.quantity, oi.price
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Image,
			&it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
