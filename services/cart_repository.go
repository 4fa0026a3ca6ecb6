package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mymenu-bot/db"
	"mymenu-bot/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CartSnapshot is the stored copy of a session cart.
type CartSnapshot struct {
	CompanyID  string             `json:"company_id"`
	Items      []models.OrderItem `json:"items"`
	ItemsTotal decimal.Decimal    `json:"items_total"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// GetCart loads the snapshot for chatID if it was touched within maxAge. A
// maxAge <= 0 means snapshots never go stale, matching Sessions.
// A missing or stale row is (nil, nil). Without a database it is always (nil, nil).
func GetCart(ctx context.Context, chatID int64, maxAge time.Duration) (*CartSnapshot, error) {
	if db.Pool == nil {
		return nil, nil
	}
	var (
		companyID  string
		itemsJSON  []byte
		itemsTotal decimal.Decimal
		updatedAt  time.Time
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT company_id, items, items_total, updated_at FROM session_carts
		WHERE chat_id = $1 AND ($2::float8 <= 0 OR updated_at > now() - make_interval(secs => $2::float8))`,
		chatID, maxAge.Seconds(),
	).Scan(&companyID, &itemsJSON, &itemsTotal, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session cart: %w", err)
	}

	var items []models.OrderItem
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
		}
	}
	return &CartSnapshot{CompanyID: companyID, Items: items, ItemsTotal: itemsTotal, UpdatedAt: updatedAt}, nil
}

// SaveCart upserts the cart of chatID. No-op without a database.
func SaveCart(ctx context.Context, chatID int64, companyID string, cart *Cart) error {
	if db.Pool == nil {
		return nil
	}
	itemsJSON, err := json.Marshal(cart.Items())
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO session_carts (chat_id, company_id, items, items_total, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (chat_id) DO UPDATE SET
			company_id = $2,
			items = $3,
			items_total = $4,
			updated_at = now()`,
		chatID, companyID, itemsJSON, cart.Total(),
	)
	return err
}

func DeleteCart(ctx context.Context, chatID int64) error {
	if db.Pool == nil {
		return nil
	}
	_, err := db.Pool.Exec(ctx, `DELETE FROM session_carts WHERE chat_id = $1`, chatID)
	return err
}

// PurgeStaleCarts removes snapshots older than maxAge and returns how many went.
// With maxAge <= 0 nothing is ever stale.
func PurgeStaleCarts(ctx context.Context, maxAge time.Duration) (int64, error) {
	if db.Pool == nil || maxAge <= 0 {
		return 0, nil
	}
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM session_carts WHERE updated_at <= now() - make_interval(secs => $1)`,
		maxAge.Seconds(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
