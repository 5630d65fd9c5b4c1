package clients

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func TestActivityPublisher_Publish(t *testing.T) {
	channel := &fakeChannel{}
	cfg := &config.RabbitMQConfig{Exchange: "presence", RoutingKey: "presence.activity"}
	publisher := NewActivityPublisher(channel, cfg)

	err := publisher.Publish(models.ActivityMessage{
		SessionID: "s1",
		Action:    models.ActionSessionStarted,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "presence", channel.exchange)
	assert.Equal(t, "presence.activity", channel.key)
	assert.Equal(t, "application/json", channel.msg.ContentType)

	var decoded models.ActivityMessage
	require.NoError(t, json.Unmarshal(channel.msg.Body, &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	assert.Equal(t, models.ActionSessionStarted, decoded.Action)
}

func TestActivityPublisher_PublishError(t *testing.T) {
	channel := &fakeChannel{err: errors.New("channel closed")}
	publisher := NewActivityPublisher(channel, &config.RabbitMQConfig{})

	err := publisher.Publish(models.ActivityMessage{SessionID: "s1"})

	assert.ErrorIs(t, err, models.ErrQueuePublish)
}

func TestRedisOptions(t *testing.T) {
	t.Run("plain address", func(t *testing.T) {
		options, err := redisOptions(&config.Redis{Url: "localhost:6379", Password: "pw", Db: 2})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", options.Addr)
		assert.Equal(t, "pw", options.Password)
		assert.Equal(t, 2, options.DB)
	})

	t.Run("url form", func(t *testing.T) {
		options, err := redisOptions(&config.Redis{Url: "redis://:secret@cache:6380/4"})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", options.Addr)
		assert.Equal(t, "secret", options.Password)
		assert.Equal(t, 4, options.DB)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := redisOptions(&config.Redis{Url: "redis://cache:6380/notadb"})
		assert.Error(t, err)
	})
}
