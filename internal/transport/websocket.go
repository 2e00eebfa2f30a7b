package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/protocol"
)

// InterpreterFactory builds a fresh interpreter, and with it a fresh session,
// for every accepted connection.
type InterpreterFactory func() *protocol.Interpreter

// WebSocketServer speaks the line protocol over websocket text messages.
// Only one controller is served at a time.
type WebSocketServer struct {
	newInterpreter InterpreterFactory
	advisor        corechess.Advisor
	logger         *zap.Logger
	slot           chan struct{}
}

func NewWebSocketServer(factory InterpreterFactory, advisor corechess.Advisor, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketServer{
		newInterpreter: factory,
		advisor:        advisor,
		logger:         logger,
		slot:           make(chan struct{}, 1),
	}
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	select {
	case s.slot <- struct{}{}:
	default:
		s.logger.Info("ws_controller_busy", zap.String("remote", r.RemoteAddr))
		_ = conn.Close(websocket.StatusTryAgainLater, "another controller is connected")
		return
	}
	defer func() { <-s.slot }()

	in := s.newInterpreter()
	logger := s.logger.With(zap.String("session_id", in.Session().ID()), zap.String("remote", r.RemoteAddr))
	logger.Info("ws_controller_connected")

	if err := s.serveConn(r.Context(), conn, in); err != nil {
		logger.Info("ws_controller_disconnected", zap.Error(err))
		_ = conn.Close(websocket.StatusInternalError, "")
		return
	}
	logger.Info("ws_controller_finished")
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (s *WebSocketServer) serveConn(ctx context.Context, conn *websocket.Conn, in *protocol.Interpreter) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			for _, reply := range in.Handle(ctx, line, s.advisor) {
				if err := conn.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
					return err
				}
			}
			if in.Done() {
				return nil
			}
		}
	}
}

// ListenAndServe serves the websocket endpoint at path on addr until ctx is done.
func (s *WebSocketServer) ListenAndServe(ctx context.Context, addr, path string) error {
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, s)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("ws_listening", zap.String("addr", addr), zap.String("path", path))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
