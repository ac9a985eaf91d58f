package server

import (
	"context"
	"net/http"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/renderer"
	"github.com/gorilla/websocket"
)

const (
	streamBuffer = 16
	writeTimeout = 5 * time.Second
)

// StreamMessage is one websocket message of the live stream
type StreamMessage struct {
	Type       string          `json:"type"` // "frame", "console"
	Mesh       int             `json:"mesh,omitempty"`
	Name       string          `json:"name,omitempty"`
	Generation uint64          `json:"generation,omitempty"`
	Computed   uint64          `json:"computed,omitempty"`
	ImageData  string          `json:"imageData,omitempty"` // Base64 encoded PNG
	Console    *ConsoleMessage `json:"console,omitempty"`
}

// streamOptions are the query parameters of /api/stream
type streamOptions struct {
	scale       int
	minInterval time.Duration // Minimum time between two frames of the same mesh
}

func parseStreamOptions(r *http.Request) (streamOptions, error) {
	query := r.URL.Query()
	scale, err := parseIntParam(query, "scale", 4, 1, maxLightmapScale)
	if err != nil {
		return streamOptions{}, err
	}
	interval, err := parseFloatParam(query, "minInterval", 0, 0, 10)
	if err != nil {
		return streamOptions{}, err
	}
	return streamOptions{scale: scale, minInterval: time.Duration(interval * float64(time.Second))}, nil
}

// handleStream upgrades to a websocket and streams refreshed lightmaps and
// console messages until the client disconnects
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	options, err := parseStreamOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.Logger().Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before sending the current frames so no refresh is missed
	frames, unsubscribeFrames := s.viewer.Subscribe(streamBuffer)
	defer unsubscribeFrames()
	console, unsubscribeConsole := s.subscribeConsole(streamBuffer)
	defer unsubscribeConsole()

	// Reader goroutine detects the client closing the connection
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Frames inside minInterval are held back, newest per mesh, and sent
	// once the interval has passed
	lastSent := make(map[int]time.Time)
	pending := make(map[int]renderer.MeshFrame)
	var flushTimer *time.Timer
	var flush <-chan time.Time
	defer func() {
		if flushTimer != nil {
			flushTimer.Stop()
		}
	}()

	sendFrame := func(frame renderer.MeshFrame) error {
		if options.minInterval > 0 {
			if wait := options.minInterval - time.Since(lastSent[frame.Mesh]); wait > 0 {
				pending[frame.Mesh] = frame
				if flush == nil {
					flushTimer = time.NewTimer(wait)
					flush = flushTimer.C
				}
				return nil
			}
		}
		delete(pending, frame.Mesh)
		lastSent[frame.Mesh] = time.Now()
		msg, err := frameMessage(frame, options.scale)
		if err != nil {
			core.Logger().Warn("failed to encode frame", "mesh", frame.Mesh, "error", err)
			return nil
		}
		return writeMessage(conn, msg)
	}

	for _, frame := range s.viewer.Frames() {
		if err := sendFrame(frame); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := sendFrame(frame); err != nil {
				return
			}
		case <-flush:
			flush = nil
			due := pending
			pending = make(map[int]renderer.MeshFrame, len(due))
			for _, frame := range due {
				// Meshes still inside their interval re-arm the timer
				if err := sendFrame(frame); err != nil {
					return
				}
			}
		case msg := <-console:
			if err := writeMessage(conn, StreamMessage{Type: "console", Console: &msg}); err != nil {
				return
			}
		}
	}
}

// frameMessage encodes a mesh frame, magnified by scale
func frameMessage(frame renderer.MeshFrame, scale int) (StreamMessage, error) {
	msg := StreamMessage{
		Type:       "frame",
		Mesh:       frame.Mesh,
		Name:       frame.Name,
		Generation: frame.Generation,
		Computed:   frame.Computed,
	}
	if frame.Image == nil {
		return msg, nil
	}
	imageData, err := imageToBase64PNG(scaleImage(frame.Image, scale))
	if err != nil {
		return msg, err
	}
	msg.ImageData = imageData
	return msg, nil
}

func writeMessage(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
