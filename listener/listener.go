// Package listener consumes "report batch ready" events published by the
// offline content-gap pipeline and pushes a freshly built report view to
// connected dashboard clients.
package listener

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"insights-dashboard/metrics"
	"insights-dashboard/services"
)

// RefreshEvent is the message published when a new report batch lands
type RefreshEvent struct {
	Date        string `json:"date"`
	ExecutionID string `json:"execution_id"`
}

// Listener subscribes to refresh events and rebroadcasts rebuilt views
type Listener struct {
	amqpURL  string
	exchange string
	queue    string

	viewService *services.ViewService
	hub         *services.WebSocketHub

	// opMu serializes amqp operations since amqp.Channel is not safe for
	// concurrent use.
	opMu    sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// New creates a refresh listener. It does not connect until Start.
func New(amqpURL, exchange, queue string, viewService *services.ViewService, hub *services.WebSocketHub) *Listener {
	return &Listener{
		amqpURL:     amqpURL,
		exchange:    exchange,
		queue:       queue,
		viewService: viewService,
		hub:         hub,
		done:        make(chan struct{}),
	}
}

// Start runs the consume loop in a goroutine, reconnecting with backoff
// until Stop is called. Event handling failures are counted and logged;
// they never crash the loop.
func (l *Listener) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Stop shuts the listener down
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.opMu.Lock()
		defer l.opMu.Unlock()
		if l.channel != nil {
			l.channel.Close()
		}
		if l.conn != nil {
			l.conn.Close()
		}
	})
}

func (l *Listener) run() {
	backoff := time.Second
	for {
		select {
		case <-l.done:
			return
		default:
		}

		deliveries, err := l.connect()
		if err != nil {
			metrics.ListenerConnected.Set(0)
			log.Warnf("RabbitMQ connect failed, retrying in %v: %v", backoff, err)
			select {
			case <-l.done:
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		metrics.ListenerConnected.Set(1)
		backoff = time.Second
		log.Infof("RabbitMQ consumer started on queue %s", l.queue)

		l.consume(deliveries)
		metrics.ListenerConnected.Set(0)
	}
}

func (l *Listener) connect() (<-chan amqp.Delivery, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	conn, err := amqp.Dial(l.amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(l.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(l.queue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, "report.batch.ready", l.exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	l.conn = conn
	l.channel = channel
	return deliveries, nil
}

func (l *Listener) consume(deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-l.done:
			return
		case delivery, ok := <-deliveries:
			if !ok {
				// Channel closed by the broker; run() will reconnect.
				return
			}
			if err := l.handle(delivery.Body); err != nil {
				metrics.ListenerProcessedTotal.WithLabelValues("error").Inc()
				log.Errorf("Failed to process refresh event: %v", err)
				delivery.Nack(false, false)
				continue
			}
			metrics.ListenerProcessedTotal.WithLabelValues("ok").Inc()
			delivery.Ack(false)
		}
	}
}

func (l *Listener) handle(body []byte) error {
	var event RefreshEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode refresh event: %w", err)
	}

	view, err := l.viewService.BuildReportView(event.Date)
	if err != nil {
		return fmt.Errorf("failed to rebuild report view for %q: %w", event.Date, err)
	}

	l.hub.BroadcastReportView(view)
	log.Infof("Broadcast refreshed report view for %s (%d records)", view.Date, len(view.Records))
	return nil
}
