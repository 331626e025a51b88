package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConversionPublisher defines the interface for publishing conversion events.
type ConversionPublisher interface {
	PublishConversion(ctx context.Context, payload ConversionEventPayload) error
}

// rabbitMQPublisher implements ConversionPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQConversionPublisher creates a new instance of ConversionPublisher.
// Паблишер объявляет очередь сам: порядок запуска сервисов не должен влиять
// на доставку событий.
func NewRabbitMQConversionPublisher(conn *amqp.Connection, queueName string) (ConversionPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conversion publisher: не удалось открыть канал: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("conversion publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	log.Printf("ConversionPublisher: очередь '%s' успешно объявлена/найдена", queueName)
	return &rabbitMQPublisher{channel: ch, queueName: queueName}, nil
}

// PublishConversion publishes a conversion event.
func (p *rabbitMQPublisher) PublishConversion(ctx context.Context, payload ConversionEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[SessionID: %s][FunnelID: %s] Ошибка сериализации ConversionEventPayload: %v", payload.SessionID, payload.FunnelID, err)
		return fmt.Errorf("ошибка сериализации события конверсии для сессии %s: %w", payload.SessionID, err)
	}

	if err := p.publishMessage(ctx, body); err != nil {
		log.Printf("[SessionID: %s][FunnelID: %s] Ошибка публикации ConversionEvent: %v", payload.SessionID, payload.FunnelID, err)
		return fmt.Errorf("ошибка публикации события конверсии для сессии %s: %w", payload.SessionID, err)
	}
	return nil
}

func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		log.Println("Ошибка публикации: канал RabbitMQ не инициализирован (nil)")
		return errors.New("канал RabbitMQ не инициализирован")
	}
	// Таймаут на публикацию
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	// Попытка публикации с retry до 3 раз
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (используем default)
			p.queueName, // routing key (имя очереди)
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "funnel-server",
			},
		)
		if err == nil {
			break
		}
		log.Printf("Ошибка публикации (attempt %d) в очередь '%s': %v", attempt, p.queueName, err)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("не удалось опубликовать сообщение в очередь '%s': %w", p.queueName, err)
	}
	return nil
}
