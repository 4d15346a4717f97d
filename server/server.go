package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"evsim/internal"
	"evsim/internal/config"
	"evsim/internal/tracing"
	"evsim/utility"
)

const wsEndpoint = "/ws/:id"

// ErrCloseConnection is returned by a message handler when the connection
// must be terminated after the current message.
var ErrCloseConnection = utility.Err("close connection")

// ConnectionListener is notified about connection lifecycle per charge point.
type ConnectionListener interface {
	OnConnect(chargePointId string)
	OnDisconnect(chargePointId string)
}

type Server struct {
	conf           *config.Config
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	messageHandler func(ws *WebSocket, data []byte) error
	watchdog       ConnectionListener
	logger         internal.LogHandler
}

type WebSocket struct {
	conn *websocket.Conn
	id   string
	ctx  context.Context
}

func (ws *WebSocket) ID() string {
	return ws.id
}

// Context carries the trace context extracted from the handshake headers.
func (ws *WebSocket) Context() context.Context {
	return ws.ctx
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	server := Server{
		conf:     conf,
		logger:   logger,
		upgrader: websocket.Upgrader{Subprotocols: []string{}},
	}
	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) AddSupportedSubProtocol(proto string) {
	for _, sub := range s.upgrader.Subprotocols {
		if sub == proto {
			return
		}
	}
	s.upgrader.Subprotocols = append(s.upgrader.Subprotocols, proto)
}

func (s *Server) SetMessageHandler(handler func(ws *WebSocket, data []byte) error) {
	s.messageHandler = handler
}

func (s *Server) SetWatchdog(watchdog ConnectionListener) {
	s.watchdog = watchdog
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(wsEndpoint, s.handleWsRequest)
}

func (s *Server) handleWsRequest(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := params.ByName("id")
	s.logger.Debug(fmt.Sprintf("connection initiated from remote %s", r.RemoteAddr))

	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}

	clientSubProto := websocket.Subprotocols(r)
	requestedProto := ""
	for _, proto := range clientSubProto {
		if len(s.upgrader.Subprotocols) == 0 {
			// supporting all protocols
			requestedProto = proto
			break
		}
		if utility.Contains(s.upgrader.Subprotocols, proto) {
			requestedProto = proto
			break
		}
	}
	responseHeader := http.Header{}
	if requestedProto != "" {
		responseHeader.Add("Sec-WebSocket-Protocol", requestedProto)
	}

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		s.logger.Error("upgrade failed: ", err)
		return
	}

	s.logger.Debug(fmt.Sprintf("upgraded socket for %s and ready to receive data", id))
	ws := WebSocket{
		conn: conn,
		id:   id,
		ctx:  tracing.Extract(r.Context(), r.Header),
	}
	if s.watchdog != nil {
		s.watchdog.OnConnect(id)
	}

	go s.messageReader(&ws)
}

func (s *Server) messageReader(ws *WebSocket) {
	conn := ws.conn
	defer func() {
		if s.watchdog != nil {
			s.watchdog.OnDisconnect(ws.id)
		}
	}()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, 3001) {
				s.logger.Debug(fmt.Sprintf("id %s leaving session", ws.id))
			} else {
				s.logger.Debug(fmt.Sprintf("id %s is closing session %s", ws.id, err))
			}
			if err = conn.Close(); err != nil {
				s.logger.Warn(fmt.Sprintf("error while closing socket %s %s", ws.id, err))
			}
			return
		}
		s.logger.RawDataEvent("IN", ws.id, string(message))
		if s.messageHandler != nil {
			err = s.messageHandler(ws, message)
			if err == ErrCloseConnection {
				s.closeProtocolError(ws)
				return
			}
			if err != nil {
				s.logger.Error(fmt.Sprintf("handling message from %s", ws.id), err)
				continue
			}
		}
	}
}

func (s *Server) closeProtocolError(ws *WebSocket) {
	message := websocket.FormatCloseMessage(websocket.CloseProtocolError, "")
	if err := ws.conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		s.logger.Warn(fmt.Sprintf("error sending close frame to %s: %s", ws.id, err))
	}
	if err := ws.conn.Close(); err != nil {
		s.logger.Warn(fmt.Sprintf("error while closing socket %s %s", ws.id, err))
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return utility.Err("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(listener)
}

// Send writes one text message to the peer.
func (s *Server) Send(ws *WebSocket, data []byte) error {
	s.logger.RawDataEvent("OUT", ws.id, string(data))
	if err := ws.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("error sending response", err)
		return err
	}
	return nil
}
