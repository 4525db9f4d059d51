package services

import (
	"sync"

	"github.com/google/uuid"
)

// TopicCatalogMutated is the single topic this core publishes: cart or
// favorite state changed and locally cached views should be refreshed.
const TopicCatalogMutated = "catalogMutated"

type Token string

type Notifier interface {
	Publish(topic string)
	Subscribe(topic string, handler func(topic string)) (token Token)
	Unsubscribe(token Token)
}

type subscription struct {
	token   Token
	handler func(topic string)
}

// NotificationService is an in-process bus. Delivery is synchronous on the
// publisher's goroutine, in subscription order; concurrent publishes are
// serialized so every handler observes them in issue order. Handlers must not
// publish from inside a delivery.
type NotificationService struct {
	mu        sync.Mutex
	deliverMu sync.Mutex
	subs      map[string][]subscription
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		subs: map[string][]subscription{},
	}
}

func (n *NotificationService) Publish(topic string) {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()
	n.mu.Lock()
	handlers := make([]subscription, len(n.subs[topic]))
	copy(handlers, n.subs[topic])
	n.mu.Unlock()
	for _, sub := range handlers {
		sub.handler(topic)
	}
}

func (n *NotificationService) Subscribe(topic string, handler func(topic string)) (token Token) {
	token = Token(uuid.NewString())
	n.mu.Lock()
	n.subs[topic] = append(n.subs[topic], subscription{token: token, handler: handler})
	n.mu.Unlock()
	return
}

func (n *NotificationService) Unsubscribe(token Token) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for topic, subs := range n.subs {
		for i, sub := range subs {
			if sub.token == token {
				n.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}
