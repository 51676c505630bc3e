//go:build integration

package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

type QueueIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	queue     *Queue
}

func (s *QueueIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.12-management-alpine",
		rabbitmq.WithAdminUsername("guest"),
		rabbitmq.WithAdminPassword("guest"),
	)
	s.Require().NoError(err)
	s.container = container

	url, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = url

	queue, err := NewQueue(QueueConfig{
		URL:        url,
		Exchange:   "watcher.items",
		RoutingKey: "items.approved",
		QueueName:  "approved_items",
	}, testLogger())
	s.Require().NoError(err)
	s.queue = queue
}

func (s *QueueIntegrationSuite) TearDownSuite() {
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestQueueIntegrationSuite(t *testing.T) {
	suite.Run(t, new(QueueIntegrationSuite))
}

func (s *QueueIntegrationSuite) consumeOne() amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	deliveries, err := ch.Consume("approved_items", "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case d := <-deliveries:
		return d
	case <-time.After(5 * time.Second):
		s.FailNow("no message arrived within 5s")
		return amqp.Delivery{}
	}
}

func (s *QueueIntegrationSuite) TestSendDeliversPersistentJSON() {
	item := approvedItem()

	s.Require().NoError(s.queue.Send(s.ctx, item))

	d := s.consumeOne()
	s.Equal("application/json", d.ContentType)
	s.Equal(uint8(amqp.Persistent), d.DeliveryMode)
	s.Equal("items.approved", d.RoutingKey)

	var msg ItemMessage
	s.Require().NoError(json.Unmarshal(d.Body, &msg))
	s.Equal(item.ListingID, msg.Item.ListingID)
	s.Equal(item.Title, msg.Item.Title)
	s.Equal(item.Status, msg.Item.Status)
	s.WithinDuration(time.Now().UTC(), msg.Timestamp, time.Minute)
}

func (s *QueueIntegrationSuite) TestMessagesSurviveWhileUnconsumed() {
	item := approvedItem()
	item.ListingID = "999"

	s.Require().NoError(s.queue.Send(s.ctx, item))

	// The message sits in the durable queue until a consumer picks it up.
	d := s.consumeOne()

	var msg ItemMessage
	s.Require().NoError(json.Unmarshal(d.Body, &msg))
	s.Equal("999", msg.Item.ListingID)
}
