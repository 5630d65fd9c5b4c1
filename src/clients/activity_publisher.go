package clients

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Publisher is the subset of *amqp.Channel used to send messages.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ActivityPublisher sends presence activity messages to RabbitMQ.
type ActivityPublisher struct {
	mu      sync.Mutex
	channel Publisher
	cfg     *config.RabbitMQConfig
}

func NewActivityPublisher(channel Publisher, cfg *config.RabbitMQConfig) *ActivityPublisher {
	return &ActivityPublisher{
		channel: channel,
		cfg:     cfg,
	}
}

// Publish serialises message as JSON and sends it with the configured
// routing key. amqp channels are not safe for concurrent publishing, so
// calls are serialised.
func (p *ActivityPublisher) Publish(message models.ActivityMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal activity message: %w", err)
	}

	p.mu.Lock()
	err = p.channel.Publish(
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	p.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Error("Failed to publish activity message")
		return fmt.Errorf("%w: %v", models.ErrQueuePublish, err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id":  message.SessionID,
		"service":     message.ServiceName,
		"action":      message.Action,
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
	}).Debug("Activity message published")

	return nil
}
