// Package progress 分析进度的 WebSocket 推送
package progress

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// 连接最长保持 30 分钟，超时强制断开，避免僵尸订阅
const maxConnectionAge = 30 * time.Minute

const (
	EventConnected = "connected"
	EventStatus    = "status"
	EventError     = "error"
	EventComplete  = "complete"
)

// Event 推送给前端的进度消息
type Event struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // 写锁，防止并发写入
	timer  *time.Timer
}

// Hub 每个用户只保留一个进度订阅，新连接顶掉旧连接
type Hub struct {
	clients map[int64]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
	}
}

// Register 登记订阅；同一用户的旧连接会被关闭替换
// 登记成功后立即推送 connected 事件
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	old := h.clients[client.UserID]
	h.clients[client.UserID] = client
	h.mu.Unlock()

	if old != nil {
		old.close()
		log.Printf("用户 %d 的旧进度连接已被新连接替换", client.UserID)
	}

	client.timer = time.AfterFunc(maxConnectionAge, func() {
		h.Unregister(client)
	})

	log.Printf("用户 %d 订阅分析进度", client.UserID)
	h.Publish(client.UserID, EventConnected, "progress stream connected")
}

// Unregister 注销订阅并关闭连接；被替换的旧连接不会误删新连接
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if h.clients[client.UserID] == client {
		delete(h.clients, client.UserID)
	}
	h.mu.Unlock()

	client.close()
	log.Printf("用户 %d 取消进度订阅", client.UserID)
}

// Publish 向用户推送进度事件，尽力而为：用户不在线或写失败都不影响分析流程
func (h *Hub) Publish(userID int64, event, message string) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(&Event{Event: event, Message: message})
	if err != nil {
		log.Printf("进度事件序列化失败: %v", err)
		return
	}

	client.mu.Lock()
	err = client.Conn.WriteMessage(websocket.TextMessage, data)
	client.mu.Unlock()
	if err != nil {
		log.Printf("向用户 %d 推送进度失败: %v", userID, err)
	}
}

// IsOnline 查询用户是否有进度订阅
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) close() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.Close()
}
