// Package stream serves film calculations over a websocket, one message per
// finished operating point.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	film "Annular/internal/calc/film"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Message types sent to the client.
const (
	TypePoint = "point"
	TypeDone  = "done"
	TypeError = "error"
)

// Msg is the envelope of every websocket frame in both directions. The
// client sends a single Msg of type "start" with a film.Input as Content.
type Msg struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
	Row     int             `json:"row,omitempty"`
	Col     int             `json:"col,omitempty"`
}

type Server struct {
	Env      film.Env
	upgrader websocket.Upgrader
}

func NewServer(env film.Env, upgrader websocket.Upgrader) *Server {
	return &Server{Env: env, upgrader: upgrader}
}

const writeWait = 10 * time.Second

// ServeWs handles one calculation per connection.
func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	var req Msg
	if err := conn.ReadJSON(&req); err != nil {
		log.WithError(err).Debug("websocket read")
		return
	}
	var in film.Input
	if req.Type != "start" {
		writeError(conn, "expected a start message")
		return
	}
	if err := json.Unmarshal(req.Content, &in); err != nil {
		writeError(conn, "invalid input: "+err.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Reading stops when the client goes away, which cancels the run.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	c, err := film.NewCalculation(in, s.Env)
	if err != nil {
		writeError(conn, err.Error())
		return
	}

	out := make(chan Msg, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range out {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(&m); err != nil {
				log.WithError(err).Debug("websocket write")
				cancel()
				for range out {
				}
				return
			}
		}
	}()

	opts := s.Env.Options
	opts.OnRecord = func(row, col int, rec film.Record) {
		b, err := json.Marshal(rec)
		if err != nil {
			return
		}
		select {
		case out <- Msg{Type: TypePoint, Content: b, Row: row, Col: col}:
		case <-ctx.Done():
		}
	}
	res, err := c.Run(ctx, opts)
	if err != nil {
		b, _ := json.Marshal(err.Error())
		out <- Msg{Type: TypeError, Content: b}
	} else {
		b, _ := json.Marshal(film.Output{Summary: c.Summary(), Failed: film.CountFailed(res.Rows), Results: res})
		out <- Msg{Type: TypeDone, Content: b}
	}
	close(out)
	<-done

	log.WithFields(log.Fields{"points": c.Size(), "error": err}).Info("websocket calculation finished")
}

func writeError(conn *websocket.Conn, text string) {
	b, _ := json.Marshal(text)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(&Msg{Type: TypeError, Content: b})
}
