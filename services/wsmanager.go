package services

import (
	"sync"
)

const subscriptionBuffer = 32

// Subscription - хендл живой подписки: канал событий плюс Stop.
// Stop обязателен при закрытии соединения или смене параметров,
// иначе хендлер продолжит получать события чужого жизненного цикла.
type Subscription struct {
	C      chan []byte
	userID int64
	hub    *SubscriptionHub
	once   sync.Once
}

// Stop снимает подписку; канал закрывается, повторные вызовы безопасны
func (s *Subscription) Stop() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// SubscriptionHub хранит живые подписки по пользователям
type SubscriptionHub struct {
	mu    sync.RWMutex
	users map[int64][]*Subscription
}

func NewSubscriptionHub() *SubscriptionHub {
	return &SubscriptionHub{
		users: make(map[int64][]*Subscription),
	}
}

// Subscribe регистрирует подписку на события пользователя
func (h *SubscriptionHub) Subscribe(userID int64) *Subscription {
	sub := &Subscription{
		C:      make(chan []byte, subscriptionBuffer),
		userID: userID,
		hub:    h,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[userID] = append(h.users[userID], sub)
	return sub
}

func (h *SubscriptionHub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.users[sub.userID]
	for i, s := range subs {
		if s == sub {
			h.users[sub.userID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.users[sub.userID]) == 0 {
		delete(h.users, sub.userID)
	}
	close(sub.C)
}

// Publish рассылает сообщение всем подпискам пользователя.
// Медленный получатель событие теряет, блокировать издателя нельзя.
func (h *SubscriptionHub) Publish(userID int64, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.users[userID] {
		select {
		case sub.C <- message:
		default:
		}
	}
}

// Subscribers возвращает число живых подписок пользователя
func (h *SubscriptionHub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

var GlobalHub = NewSubscriptionHub()
