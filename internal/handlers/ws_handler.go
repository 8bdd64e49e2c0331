package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

// graphql-ws protocol message types (the subset this server speaks).
const (
	wsConnectionInit      = "connection_init"
	wsConnectionAck       = "connection_ack"
	wsConnectionTerminate = "connection_terminate"
	wsStart               = "start"
	wsData                = "data"
	wsError               = "error"
	wsComplete            = "complete"
	wsStop                = "stop"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type WSHandler struct {
	schema graphql.Schema
}

func NewWSHandler(schema graphql.Schema) *WSHandler {
	return &WSHandler{schema: schema}
}

// wsSession serializes writes; subscription goroutines and the read
// loop share the connection.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex

	opMu sync.Mutex
	ops  map[string]context.CancelFunc
}

func (s *wsSession) write(msg wsMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *wsSession) register(id string, cancel context.CancelFunc) {
	s.opMu.Lock()
	if old, ok := s.ops[id]; ok {
		old()
	}
	s.ops[id] = cancel
	s.opMu.Unlock()
}

func (s *wsSession) cancel(id string) {
	s.opMu.Lock()
	if cancel, ok := s.ops[id]; ok {
		cancel()
		delete(s.ops, id)
	}
	s.opMu.Unlock()
}

func (s *wsSession) cancelAll() {
	s.opMu.Lock()
	for id, cancel := range s.ops {
		cancel()
		delete(s.ops, id)
	}
	s.opMu.Unlock()
}

// Serve runs one connection's read loop. The viewer resolved during
// the HTTP upgrade is carried into every operation context.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	session := &wsSession{conn: conn, ops: make(map[string]context.CancelFunc)}
	defer session.cancelAll()

	v := viewer.Anonymous()
	if stored, ok := conn.Locals("viewer").(viewer.Viewer); ok {
		v = stored
	}
	base := viewer.NewContext(context.Background(), v)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case wsConnectionInit:
			if err := session.write(wsMessage{Type: wsConnectionAck}); err != nil {
				return
			}
		case wsStart:
			h.start(base, session, msg)
		case wsStop:
			session.cancel(msg.ID)
			_ = session.write(wsMessage{ID: msg.ID, Type: wsComplete})
		case wsConnectionTerminate:
			return
		default:
			slog.Debug("unknown ws message type", "type", msg.Type)
		}
	}
}

func (h *WSHandler) start(base context.Context, session *wsSession, msg wsMessage) {
	var req graphQLRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		_ = session.write(errMessage(msg.ID, "malformed start payload"))
		return
	}

	opType, err := operationType(req.Query, req.OperationName)
	if err != nil {
		_ = session.write(errMessage(msg.ID, err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(base)
	params := graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	}

	if opType != ast.OperationTypeSubscription {
		defer cancel()
		result := graphql.Do(params)
		payload, _ := json.Marshal(result)
		_ = session.write(wsMessage{ID: msg.ID, Type: wsData, Payload: payload})
		_ = session.write(wsMessage{ID: msg.ID, Type: wsComplete})
		return
	}

	session.register(msg.ID, cancel)
	results := graphql.Subscribe(params)
	go func() {
		defer session.cancel(msg.ID)
		for result := range results {
			payload, _ := json.Marshal(result)
			if err := session.write(wsMessage{ID: msg.ID, Type: wsData, Payload: payload}); err != nil {
				return
			}
		}
		_ = session.write(wsMessage{ID: msg.ID, Type: wsComplete})
	}()
}

func errMessage(id, text string) wsMessage {
	payload, _ := json.Marshal(map[string]string{"message": text})
	return wsMessage{ID: id, Type: wsError, Payload: payload}
}
