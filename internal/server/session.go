package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/core/anchors"
	"github.com/zeusync/blastfield/internal/core/events/bus"
	"github.com/zeusync/blastfield/internal/core/observability/log"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
	"github.com/zeusync/blastfield/internal/scene"
)

// Session bridges one websocket client to its own scene. Only the read loop
// touches the scene; writes are serialized by writeMu.
type Session struct {
	ID          string
	ConnectedAt time.Time

	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	closeOnce    sync.Once

	scene  *scene.Scene
	logger log.Log
}

func newSession(conn *websocket.Conn, cfg config.Config, logger log.Log) (*Session, error) {
	id := uuid.NewString()
	s := &Session{
		ID:           id,
		ConnectedAt:  time.Now(),
		conn:         conn,
		writeTimeout: cfg.Server.WriteTimeout,
		logger:       logger.With(log.String("session", id)),
	}

	sc, err := scene.New(cfg, remotePhysics{s}, sessionObserver{s},
		scene.WithLogger(logger),
		scene.WithSource(id),
		scene.WithEventBus(newSessionBus(logger)),
	)
	if err != nil {
		return nil, err
	}
	if _, err = sc.Events().Subscribe(scene.EventLifecycle, s.onLifecycle); err != nil {
		return nil, err
	}
	s.scene = sc
	return s, nil
}

func newSessionBus(logger log.Log) bus.EventBus {
	b := bus.New()
	if logger.GetLevel() == log.LevelDebug {
		b.AddObserver(bus.NewLogObserver(logger))
	}
	return b
}

func (s *Session) Scene() *scene.Scene { return s.scene }

// serve runs the read loop until the connection fails or closes.
func (s *Session) serve(readLimit int64) {
	s.conn.SetReadLimit(readLimit)
	if err := s.send(ServerMessage{Type: MsgWelcome, SessionID: s.ID}); err != nil {
		s.logger.Warn("Failed to greet client", log.Error(err))
		return
	}

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Connection closed unexpectedly", log.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			s.reply(0, fmt.Errorf("%w: %w", ErrInvalidMessage, err))
			continue
		}
		if err = s.handle(msg); err != nil {
			s.reply(msg.Seq, err)
		}
	}
}

func (s *Session) handle(msg ClientMessage) error {
	switch msg.Type {
	case MsgAnchorAdded, MsgAnchorUpdated:
		if msg.Anchor == nil {
			return fmt.Errorf("%w: anchor", ErrMissingField)
		}
		a, err := msg.Anchor.Anchor()
		if err != nil {
			return err
		}
		if msg.Type == MsgAnchorAdded {
			return s.scene.AnchorAdded(a)
		}
		return s.scene.AnchorUpdated(a)

	case MsgAnchorRemoved:
		if msg.AnchorID == "" {
			return fmt.Errorf("%w: anchor_id", ErrMissingField)
		}
		return s.scene.AnchorRemoved(anchors.AnchorID(msg.AnchorID))

	case MsgTap:
		_, err := s.scene.Tap(hitPoint(msg.Hit))
		return err

	case MsgLongPress:
		_, err := s.scene.LongPress(hitPoint(msg.Hit))
		return err

	case MsgBodyPosition:
		if msg.BodyID == "" || msg.Position == nil {
			return fmt.Errorf("%w: body_id and position", ErrMissingField)
		}
		return s.scene.ReportPosition(physics.BodyID(msg.BodyID), msg.Position.Vec3())

	case MsgSession:
		t, err := anchors.ParseTransition(msg.Transition)
		if err != nil {
			return err
		}
		var cause error
		if msg.Error != "" {
			cause = errors.New(msg.Error)
		}
		return s.scene.Apply(t, cause)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

func hitPoint(v *Vec) *mgl64.Vec3 {
	if v == nil {
		return nil
	}
	p := v.Vec3()
	return &p
}

func (s *Session) reply(seq uint64, err error) {
	s.logger.Debug("Request rejected", log.Error(err))
	if sendErr := s.send(ServerMessage{Type: MsgError, Seq: seq, Error: err.Error()}); sendErr != nil {
		s.logger.Warn("Failed to send error", log.Error(sendErr))
	}
}

func (s *Session) onLifecycle(e bus.Event) error {
	change, ok := e.Data().(scene.LifecycleChanged)
	if !ok {
		return nil
	}
	return s.send(ServerMessage{
		Type: MsgLifecycle,
		Lifecycle: &LifecyclePayload{
			From:       change.From.String(),
			To:         change.To.String(),
			Transition: change.Transition.String(),
		},
	})
}

func (s *Session) send(msg ServerMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteJSON(msg)
}

// close sends a close frame and drops the connection. Safe to call more than once.
func (s *Session) close(code int, reason string) {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
}

var _ scene.Physics = remotePhysics{}

// remotePhysics forwards scene commands to the host physics engine over the socket.
type remotePhysics struct{ s *Session }

func (p remotePhysics) UpsertSurface(surface anchors.Surface) error {
	return p.s.send(ServerMessage{Type: MsgSurfaceUpsert, Surface: surfacePayload(surface)})
}

func (p remotePhysics) RemoveSurface(id anchors.AnchorID) error {
	return p.s.send(ServerMessage{Type: MsgSurfaceRemove, AnchorID: string(id)})
}

func (p remotePhysics) AddBody(d physics.BodyDescriptor) error {
	return p.s.send(ServerMessage{Type: MsgBodyAdd, Body: bodyPayload(d)})
}

func (p remotePhysics) RemoveBody(id physics.BodyID) error {
	return p.s.send(ServerMessage{Type: MsgBodyRemove, BodyID: string(id)})
}

func (p remotePhysics) ApplyImpulses(impulses map[physics.BodyID]mgl64.Vec3) error {
	return p.s.send(ServerMessage{Type: MsgImpulses, Impulses: impulsePayloads(impulses)})
}

var _ anchors.SessionObserver = sessionObserver{}

// sessionObserver tells the user what happened to the AR session.
type sessionObserver struct{ s *Session }

func (o sessionObserver) SessionFailed(err error) {
	o.notify("AR session failed: " + err.Error())
}

func (o sessionObserver) SessionInterrupted() {
	o.notify("AR session interrupted")
}

func (o sessionObserver) SessionInterruptionEnded(resetTracking bool) {
	if resetTracking {
		o.notify("AR session resumed, tracking was reset")
		return
	}
	o.notify("AR session resumed")
}

func (o sessionObserver) notify(text string) {
	if err := o.s.send(ServerMessage{Type: MsgNotice, Notice: text}); err != nil {
		o.s.logger.Warn("Failed to send notice", log.Error(err))
	}
}
