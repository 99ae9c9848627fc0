package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConn - часть *websocket.Conn, нужная для рассылки
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WSConnManager хранит открытые websocket-соединения по id пользователя
type WSConnManager struct {
	mu    sync.Mutex
	users map[int64][]WSConn
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[int64][]WSConn),
	}
}

func (m *WSConnManager) Add(userID int64, conn WSConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append(m.users[userID], conn)
}

func (m *WSConnManager) Remove(userID int64, conn WSConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(userID, conn)
}

func (m *WSConnManager) removeLocked(userID int64, conn WSConn) {
	conns := m.users[userID]
	for i, c := range conns {
		if c == conn {
			m.users[userID] = append(conns[:i:i], conns[i+1:]...)
			break
		}
	}
	if len(m.users[userID]) == 0 {
		delete(m.users, userID)
	}
}

// Send пишет сообщение во все соединения пользователя и возвращает число доставок.
// Соединения с ошибкой записи закрываются и удаляются.
func (m *WSConnManager) Send(userID int64, message []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	delivered := 0
	for _, conn := range append([]WSConn(nil), m.users[userID]...) {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			debugf("Dropping websocket of user %d: %v", userID, err)
			_ = conn.Close()
			m.removeLocked(userID, conn)
			continue
		}
		delivered++
	}
	return delivered
}

// Count - число открытых соединений пользователя
func (m *WSConnManager) Count(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users[userID])
}
