package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/warungbuyogi/storefront/internal/checkout"
	kafkax "github.com/warungbuyogi/storefront/internal/kafka"
	"github.com/warungbuyogi/storefront/internal/orders"
	"github.com/warungbuyogi/storefront/internal/redisx"
)

// Notification adalah satu entri feed "pesanan baru" di dashboard admin.
type Notification struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Service meng-handle event order dari Kafka: dedup via Redis, lalu
// menulis feed notifikasi admin dan cache status order.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent dipasang sebagai handler consumer.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced && env.EventType != orders.EventOrderStatusChanged {
		return nil
	}

	// dedup via event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	n, err := BuildNotification(env)
	if err != nil {
		return err
	}

	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	pipe := s.Redis.TxPipeline()
	pipe.LPush(ctx, redisx.KeyAdminNotifications, b)
	pipe.LTrim(ctx, redisx.KeyAdminNotifications, 0, redisx.AdminNotificationsMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if env.EventType == orders.EventOrderStatusChanged {
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		skey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
		body, _ := json.Marshal(map[string]any{"status": p.NewStatus})
		_ = s.Redis.Set(ctx, skey, body, redisx.TTLStatusCache).Err()
	}
	return nil
}

// BuildNotification menerjemahkan envelope ke entri feed. Murni supaya
// bisa dites tanpa Redis/Kafka.
func BuildNotification(env orders.Envelope) (Notification, error) {
	n := Notification{
		EventID:    env.EventID,
		Type:       env.EventType,
		OccurredAt: env.OccurredAt,
	}
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return Notification{}, err
		}
		n.OrderID = p.OrderID
		n.Text = fmt.Sprintf("Pesanan baru dari %s - %s", p.CustomerName, checkout.FormatRupiah(p.Total))
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return Notification{}, err
		}
		n.OrderID = p.OrderID
		n.Text = fmt.Sprintf("Order %s sekarang %s", p.OrderID, p.NewStatus)
	default:
		return Notification{}, fmt.Errorf("unsupported event type %q", env.EventType)
	}
	return n, nil
}
