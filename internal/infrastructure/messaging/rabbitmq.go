package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
)

// RoutingKeyStockMoved clave de ruteo de los eventos de movimiento de stock.
const RoutingKeyStockMoved = "stock.moved"

var _ inventory.EventPublisher = (*RabbitPublisher)(nil)

// RabbitPublisher publica eventos JSON en un exchange topic.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewRabbitPublisher conecta y declara el exchange (durable, topic).
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange: %w", err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Close cierra canal y conexión.
func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishStockMoved serializa el evento y lo publica con el tenant en los headers.
func (p *RabbitPublisher) PublishStockMoved(ctx context.Context, ev inventory.StockMovedEvent) error {
	msg, err := stockMovedMessage(ev)
	if err != nil {
		return err
	}
	// amqp.Channel no es seguro para publicaciones concurrentes.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyStockMoved, false, false, msg)
}

func stockMovedMessage(ev inventory.StockMovedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal stock moved: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         RoutingKeyStockMoved,
		Headers:      amqp.Table{"tenant_id": ev.TenantID},
		Body:         body,
	}, nil
}
