package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

func (b *NatsBroker) Subscribe(subject string, handler Handler) (func(), error) {
	sub, err := b.conn.Subscribe(subject, func(m *nats.Msg) {
		handler(fromNats(m))
	})
	if err != nil {
		return nil, err
	}
	log.Printf("NATS subscription started on %s", subject)

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe from %s: %v", subject, err)
		}
	}, nil
}

func fromNats(m *nats.Msg) Message {
	msg := Message{Subject: m.Subject, Data: m.Data}
	if m.Header != nil {
		msg.Key = m.Header.Get(KeyHeader)
	}
	return msg
}
