package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/pkg/pubsub"
)

// Hub 按用户邮箱管理连接，一个用户可有多个连接
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

type Client struct {
	Email string
	Conn  *websocket.Conn
	mu    sync.Mutex // 写锁
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	client.Email = model.NormalizeEmail(client.Email)

	h.mu.Lock()
	if h.clients[client.Email] == nil {
		h.clients[client.Email] = make(map[*Client]struct{})
	}
	h.clients[client.Email][client] = struct{}{}
	userConns := len(h.clients[client.Email])
	h.mu.Unlock()

	h.logger.Debug("ws client connected", zap.String("email", client.Email), zap.Int("user_conns", userConns))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if conns, ok := h.clients[client.Email]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.Email)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("ws client disconnected", zap.String("email", client.Email))
}

// SendToUser 向用户的所有连接发送，用户不在线时直接返回
func (h *Hub) SendToUser(email string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := h.clients[model.NormalizeEmail(email)]
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			h.logger.Warn("ws write failed", zap.String("email", c.Email), zap.Error(err))
		}
	}
	return nil
}

func (h *Hub) IsOnline(email string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[model.NormalizeEmail(email)]) > 0
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// ForwardPaymentEvent 将 Redis 收到的支付事件推送给对应用户，作为订阅回调使用
func (h *Hub) ForwardPaymentEvent(event *pubsub.PaymentEvent) {
	if !h.IsOnline(event.UserEmail) {
		return
	}
	if err := h.SendToUser(event.UserEmail, &Message{Type: event.Type, Data: event}); err != nil {
		h.logger.Warn("failed to forward payment event",
			zap.String("payment_id", event.PaymentID), zap.Error(err))
	}
}
