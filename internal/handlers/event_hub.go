// agencia-crm/internal/handlers/event_hub.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // el frontend corre en otro origen
	},
}

// GlobalEventHub es el único hub de eventos de la aplicación.
var GlobalEventHub = NewEventHub()

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub reparte los eventos del registro de actividad a los paneles
// conectados por websocket.
type EventHub struct {
	clients    map[*eventClient]bool
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	mu         sync.Mutex
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:    make(map[*eventClient]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
	}
}

func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Panel conectado al feed de eventos")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Panel desconectado del feed de eventos")

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// cliente lento: lo desconectamos para no bloquear al resto
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish serializa el evento y lo envía a todos los paneles conectados sin
// bloquear al handler que lo originó.
func (h *EventHub) Publish(evento models.Event) {
	data, err := json.Marshal(evento)
	if err != nil {
		slog.Error("No se pudo serializar el evento", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("Feed de eventos saturado, evento descartado del broadcast", "event_id", evento.ID)
	}
}

// RegistrarEvento guarda una entrada en el registro de actividad y la publica
// en el feed. Un fallo aquí solo se registra en el log: nunca interrumpe la
// operación que originó el evento.
func RegistrarEvento(db *gorm.DB, descripcion string) {
	evento := models.Event{
		Description: descripcion,
		Date:        time.Now().UTC(),
	}
	if err := db.Create(&evento).Error; err != nil {
		slog.Error("No se pudo guardar el evento", "description", descripcion, "error", err)
		return
	}
	GlobalEventHub.Publish(evento)
}

// EventWSEndpoint conecta un panel al feed de eventos en vivo.
func EventWSEndpoint(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("No se pudo abrir la conexión websocket", "error", err)
		return
	}

	client := &eventClient{conn: conn, send: make(chan []byte, 16)}
	GlobalEventHub.register <- client

	// Bomba de escritura; el feed es de solo lectura para el cliente.
	go func() {
		defer conn.Close()
		for data := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				break
			}
		}
	}()

	// Drenamos lecturas para detectar la desconexión.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				GlobalEventHub.unregister <- client
				break
			}
		}
	}()
}
