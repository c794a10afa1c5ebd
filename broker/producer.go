package broker

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsBroker publishes and subscribes over a NATS connection.
type NatsBroker struct {
	conn *nats.Conn
}

func NewNatsBroker(url string) (*NatsBroker, error) {
	conn, err := nats.Connect(url,
		nats.Name("minijira-api"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS at %s", conn.ConnectedUrl())
	return &NatsBroker{conn: conn}, nil
}

func (b *NatsBroker) Publish(subject, key string, data []byte) error {
	msg := nats.NewMsg(subject)
	msg.Header.Set(KeyHeader, key)
	msg.Data = data
	if err := b.conn.PublishMsg(msg); err != nil {
		log.Printf("Failed to publish message to %s: %v", subject, err)
		return err
	}
	return nil
}

func (b *NatsBroker) Close() {
	if b.conn != nil {
		if err := b.conn.Drain(); err != nil {
			b.conn.Close()
		}
	}
}
