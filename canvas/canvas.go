// Package canvas implements the drawing-command protocol emitted toward the
// external rendering client. The channel is one-directional: the runtime
// produces commands, a relay broadcasts them, browsers paint them.
// Pointer-button events flowing back are handled renderer-side and never
// reach this package.
package canvas

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Op is one of the fixed drawing operations the renderer understands.
type Op string

const (
	OpBeginPath   Op = "beginPath"
	OpMoveTo      Op = "moveTo"
	OpLineTo      Op = "lineTo"
	OpStroke      Op = "stroke"
	OpStrokeStyle Op = "strokeStyle"
	OpFillStyle   Op = "fillStyle"
	OpFillRect    Op = "fillRect"
)

// Command is one wire message: either an operation with a single value
// (style changes carry the hex color code) or an operation with numeric
// parameters.
type Command struct {
	Method Op        `json:"method"`
	Value  string    `json:"value,omitempty"`
	Params []float64 `json:"params,omitempty"`
}

// ColorHex converts a 24-bit integer color to its 6-hex-digit code:
// 255 becomes "#0000ff".
func ColorHex(n int64) string {
	return fmt.Sprintf("#%06x", n&0xffffff)
}

// Emitter delivers commands to a renderer, in program order.
type Emitter interface {
	Emit(Command) error
}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// Recorder is an in-memory emitter for tests and headless runs.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends the command.
func (r *Recorder) Emit(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns a copy of everything emitted so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// ---------------------------------------------------------------------------
// Websocket emitter
// ---------------------------------------------------------------------------

// Socket emits commands as JSON over a websocket to the canvas relay.
type Socket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to the relay at url (ws://host:port).
func Dial(url string) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing renderer %s: %w", url, err)
	}
	return &Socket{conn: conn}, nil
}

// Emit writes one command. The lock serializes frames from concurrent send
// trees; ordering between unrelated trees is whatever the lock yields.
func (s *Socket) Emit(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("emitting %s: %w", cmd.Method, err)
	}
	return nil
}

// Close closes the connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
