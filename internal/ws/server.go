package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/gorilla/websocket"

	"github.com/comalice/reactiontask/internal/core"
	"github.com/comalice/reactiontask/internal/primitives"
	"github.com/comalice/reactiontask/internal/production"
)

// Controller is the measurement session the server drives.
type Controller interface {
	StartMeasurement() error
	StopMeasurement() error
	RespondToStimulus(tag string) error
	AddMilestone() error
	AddEventLog(name string) error
	Dataset() primitives.Dataset
	Snapshot() core.Snapshot
	Graph() string
	GraphJSON() ([]byte, error)
}

type ServerConfig struct {
	Logger      micrologger.Logger
	Broadcaster *Broadcaster
	Controller  Controller
}

type Server struct {
	logger      micrologger.Logger
	broadcaster *Broadcaster
	controller  Controller
	upgrader    websocket.Upgrader
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.Broadcaster == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Broadcaster must not be empty", config)
	}
	if config.Controller == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Controller must not be empty", config)
	}

	s := &Server{
		logger:      config.Logger,
		broadcaster: config.Broadcaster,
		controller:  config.Controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: sameHostOrigin,
		},
	}

	return s, nil
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("POST /api/start", s.handleAction(func(*http.Request) error {
		return s.controller.StartMeasurement()
	}))
	mux.HandleFunc("POST /api/stop", s.handleAction(func(*http.Request) error {
		return s.controller.StopMeasurement()
	}))
	mux.HandleFunc("POST /api/respond", s.handleAction(func(r *http.Request) error {
		return s.controller.RespondToStimulus(r.URL.Query().Get("tag"))
	}))
	mux.HandleFunc("POST /api/milestone", s.handleAction(func(*http.Request) error {
		return s.controller.AddMilestone()
	}))
	mux.HandleFunc("POST /api/events", s.handleAction(func(r *http.Request) error {
		return s.controller.AddEventLog(r.URL.Query().Get("name"))
	}))

	mux.HandleFunc("GET /api/reactions", s.handleReactions)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/dataset", s.handleDataset)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
}

// Handler returns the routes wrapped with security headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf(ctx, err, "ws upgrade")
		return
	}

	s.logger.Debugf(ctx, "websocket client connected: %s", r.RemoteAddr)
	c := s.broadcaster.addClient(conn, &WSMessage{
		Type:    MsgSnapshot,
		Payload: SnapshotPayload{Session: s.controller.Snapshot()},
	})

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			s.logger.Debugf(context.Background(), "websocket client disconnected: %s", r.RemoteAddr)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd Command
			if err := json.Unmarshal(data, &cmd); err != nil {
				s.broadcaster.sendTo(c, errorMessage(microerror.Maskf(invalidCommandError, "%s", err)))
				continue
			}
			if reply := s.handleCommand(cmd); reply != nil {
				s.broadcaster.sendTo(c, *reply)
			}
		}
	}()
}

// handleCommand runs cmd against the controller. The returned message, if
// any, is meant for the requesting client only.
func (s *Server) handleCommand(cmd Command) *WSMessage {
	var err error
	switch cmd.Type {
	case CmdStart:
		err = s.controller.StartMeasurement()
	case CmdStop:
		err = s.controller.StopMeasurement()
	case CmdRespond:
		err = s.controller.RespondToStimulus(cmd.Tag)
	case CmdMilestone:
		err = s.controller.AddMilestone()
	case CmdEvent:
		err = s.controller.AddEventLog(cmd.Name)
	case CmdExport:
		var f production.Format
		f, err = production.ParseFormat(cmd.Format)
		if err == nil {
			var msg WSMessage
			msg, err = s.exportMessage(f)
			if err == nil {
				return &msg
			}
		}
	default:
		err = microerror.Maskf(invalidCommandError, "unknown command %q", cmd.Type)
	}

	if err != nil {
		msg := errorMessage(err)
		return &msg
	}
	return nil
}

func (s *Server) exportMessage(f production.Format) (WSMessage, error) {
	ds := s.controller.Dataset()
	reactions, err := production.MarshalReactions(ds.Reactions, f)
	if err != nil {
		return WSMessage{}, microerror.Mask(err)
	}
	events, err := production.MarshalEvents(ds.Events, f)
	if err != nil {
		return WSMessage{}, microerror.Mask(err)
	}
	return WSMessage{
		Type: MsgExport,
		Payload: ExportPayload{
			Format:    string(f),
			Reactions: string(reactions),
			Events:    string(events),
		},
	}, nil
}

func (s *Server) handleAction(action func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r); err != nil {
			s.logger.Errorf(r.Context(), err, "%s %s", r.Method, r.URL.Path)
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleReactions(w http.ResponseWriter, r *http.Request) {
	s.writeExport(w, r, func(f production.Format) ([]byte, error) {
		return production.MarshalReactions(s.controller.Dataset().Reactions, f)
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.writeExport(w, r, func(f production.Format) ([]byte, error) {
		return production.MarshalEvents(s.controller.Dataset().Events, f)
	})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "" {
		q := r.URL.Query()
		q.Set("format", string(production.FormatJSON))
		r.URL.RawQuery = q.Encode()
	}
	s.writeExport(w, r, func(f production.Format) ([]byte, error) {
		return production.MarshalDataset(s.controller.Dataset(), f)
	})
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, encode func(production.Format) ([]byte, error)) {
	f, err := production.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := encode(f)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	s.write(w, r, data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.controller.Snapshot()); err != nil {
		s.logger.Errorf(r.Context(), err, "encoding state")
	}
}

// handleGraph serves the transition graph as DOT, or as a JSON edge list
// with format=json.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		s.write(w, r, []byte(s.controller.Graph()))
	case string(production.FormatJSON):
		data, err := s.controller.GraphJSON()
		if err != nil {
			s.logger.Errorf(r.Context(), err, "encoding graph")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", production.FormatJSON.ContentType())
		s.write(w, r, data)
	default:
		http.Error(w, "unknown graph format "+strconv.Quote(format), http.StatusBadRequest)
	}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, data []byte) {
	if _, err := w.Write(data); err != nil {
		s.logger.Errorf(r.Context(), err, "writing %s response", r.URL.Path)
	}
}

func statusFor(err error) int {
	switch {
	case production.IsUnknownFormat(err), IsInvalidCommand(err):
		return http.StatusBadRequest
	case core.IsCallbackNotConfigured(err):
		return http.StatusPreconditionFailed
	case core.IsClosed(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) WSMessage {
	return WSMessage{Type: MsgError, Payload: ErrorPayload{Message: err.Error()}}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// sameHostOrigin accepts requests without an Origin header and those whose
// origin host matches the request host.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
