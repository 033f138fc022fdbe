package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finsight/pkg/config"
	"finsight/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	BlogExchange       = "blog_events"
	PostEventQueueName = "post_events"
)

type PostEventType string

const (
	PostCreated PostEventType = "post.created"
	PostUpdated PostEventType = "post.updated"
	PostDeleted PostEventType = "post.deleted"
)

var postEventTypes = []PostEventType{PostCreated, PostUpdated, PostDeleted}

// PostEvent is the message body published for every successful admin write.
type PostEvent struct {
	Type       PostEventType `json:"type"`
	Slug       string        `json:"slug"`
	Title      string        `json:"title,omitempty"`
	AuthorID   string        `json:"author_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		BlogExchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		PostEventQueueName, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, eventType := range postEventTypes {
		if err := channel.QueueBind(PostEventQueueName, string(eventType), BlogExchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", eventType, err)
		}
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func encodePostEvent(event PostEvent) (amqp.Publishing, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
	}, nil
}

// PublishPostEvent routes the event by its type.
func (c *Client) PublishPostEvent(ctx context.Context, event PostEvent) error {
	msg, err := encodePostEvent(event)
	if err != nil {
		return err
	}

	if err := c.channel.PublishWithContext(ctx, BlogExchange, string(event.Type), false, false, msg); err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s for slug=%s: %v", event.Type, event.Slug, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("[RABBITMQ] Published %s for slug=%s", event.Type, event.Slug)
	return nil
}

func decodePostEvent(body []byte) (PostEvent, error) {
	var event PostEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return PostEvent{}, fmt.Errorf("failed to unmarshal post event: %w", err)
	}
	if event.Type == "" || event.Slug == "" {
		return PostEvent{}, fmt.Errorf("post event missing type or slug")
	}
	return event, nil
}

// ConsumePostEvents delivers post events to handler until ctx is cancelled
// or the channel closes. Malformed messages are dropped; a handler error
// requeues the message.
func (c *Client) ConsumePostEvents(ctx context.Context, handler func(context.Context, PostEvent) error) error {
	msgs, err := c.channel.Consume(
		PostEventQueueName, // queue
		"",                 // consumer
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from %s", PostEventQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("[RABBITMQ] Delivery channel for %s closed", PostEventQueueName)
					return
				}

				event, err := decodePostEvent(msg.Body)
				if err != nil {
					c.logger.Error("[RABBITMQ] %v, body=%s", err, string(msg.Body))
					msg.Nack(false, false)
					continue
				}

				if err := handler(ctx, event); err != nil {
					c.logger.Error("[RABBITMQ] Handler failed for %s slug=%s: %v", event.Type, event.Slug, err)
					msg.Nack(false, true)
					continue
				}

				msg.Ack(false)
			}
		}
	}()

	return nil
}
