package websocketPkg

import (
	"VidaSegura/internal/entity"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/gorilla/websocket"
	"log"
	"os"
	"sync"
	"time"
)

type StreamKind string

const (
	LandmarkStream StreamKind = "LANDMARK"
	FrameStream    StreamKind = "FRAME"
)

type IWebsocket interface {
	ProcessLandmarkFrame(frame []byte) (*entity.LandmarkFrame, error)
	ExtractVideoFrame(video []byte, position float64) ([]byte, error)
	IsConnected(kind StreamKind) bool
	Reconnect(kind StreamKind) error
	CloseConnections()
}

type webSocketClient struct {
	landmarkConn *websocket.Conn
	frameConn    *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

type frameExtractRequest struct {
	VideoBase64 string  `json:"video_base64"`
	Position    float64 `json:"position"`
}

type frameExtractResponse struct {
	FrameBase64 string `json:"frame_base64"`
	Error       string `json:"error,omitempty"`
}

func NewVisionWebSocketClient() IWebsocket {
	client := &webSocketClient{
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground(LandmarkStream)
	go client.connectInBackground(FrameStream)

	return client
}

func (c *webSocketClient) connectInBackground(kind StreamKind) {
	if err := c.Reconnect(kind); err != nil {
		log.Printf("Initial connection to %s service failed: %v. Will retry on demand.", kind, err)
	} else {
		log.Printf("Successfully connected to %s service", kind)
	}
}

func (c *webSocketClient) IsConnected(kind StreamKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kind == LandmarkStream {
		return c.landmarkConn != nil
	}
	return c.frameConn != nil
}

func (c *webSocketClient) Reconnect(kind StreamKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kind == LandmarkStream && c.landmarkConn != nil {
		c.landmarkConn.Close()
		c.landmarkConn = nil
	} else if kind == FrameStream && c.frameConn != nil {
		c.frameConn.Close()
		c.frameConn = nil
	}

	url := getWebSocketURL(kind)
	if url == "" {
		return fmt.Errorf("URL for %s service not configured", kind)
	}

	log.Printf("Connecting to %s at %s", kind, url)

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong: %v", err)
		}
		return nil
	})

	if kind == LandmarkStream {
		c.landmarkConn = conn
	} else {
		c.frameConn = conn
	}

	go c.keepAlive(kind)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.landmarkConn != nil {
		c.landmarkConn.Close()
		c.landmarkConn = nil
	}

	if c.frameConn != nil {
		c.frameConn.Close()
		c.frameConn = nil
	}
}

func (c *webSocketClient) keepAlive(kind StreamKind) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		var conn *websocket.Conn

		if kind == LandmarkStream {
			conn = c.landmarkConn
		} else {
			conn = c.frameConn
		}

		if conn == nil {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(
			websocket.PingMessage,
			[]byte{},
			time.Now().Add(c.writeTimeout),
		)

		if err != nil {
			log.Printf("Ping failed for %s, marking connection as dead: %v", kind, err)
			if kind == LandmarkStream {
				c.landmarkConn = nil
			} else {
				c.frameConn = nil
			}
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *webSocketClient) getConnection(kind StreamKind) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var conn *websocket.Conn
	if kind == LandmarkStream {
		conn = c.landmarkConn
	} else {
		conn = c.frameConn
	}

	if conn == nil {
		return nil, fmt.Errorf("not connected to %s service", kind)
	}

	return conn, nil
}

// ProcessLandmarkFrame sends one camera frame to the landmark service and
// returns the pose/landmark measurements the liveness detectors consume.
func (c *webSocketClient) ProcessLandmarkFrame(frame []byte) (*entity.LandmarkFrame, error) {
	conn, err := c.getConnection(LandmarkStream)
	if err != nil {
		if err := c.Reconnect(LandmarkStream); err != nil {
			return nil, fmt.Errorf("cannot connect to landmark service: %w", err)
		}
		conn, err = c.getConnection(LandmarkStream)
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.landmarkConn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error sending landmark frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.landmarkConn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error reading landmark message: %w", err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var result entity.LandmarkFrame
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling landmark response: %w", err)
	}

	return &result, nil
}

// ExtractVideoFrame asks the frame service for a still at the given relative
// position (0..1) of the video, 0.5 being the temporal midpoint.
func (c *webSocketClient) ExtractVideoFrame(video []byte, position float64) ([]byte, error) {
	conn, err := c.getConnection(FrameStream)
	if err != nil {
		if err := c.Reconnect(FrameStream); err != nil {
			return nil, fmt.Errorf("cannot connect to frame service: %w", err)
		}
		conn, err = c.getConnection(FrameStream)
		if err != nil {
			return nil, err
		}
	}

	req := frameExtractRequest{
		VideoBase64: base64.StdEncoding.EncodeToString(video),
		Position:    position,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.frameConn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error sending frame request: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.frameConn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error reading frame message: %w", err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var resp frameExtractResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling frame response: %w", err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("frame service error: %s", resp.Error)
	}

	frame, err := base64.StdEncoding.DecodeString(resp.FrameBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid frame payload: %w", err)
	}

	return frame, nil
}

func getWebSocketURL(kind StreamKind) string {
	switch kind {
	case LandmarkStream:
		url := os.Getenv("AI_LANDMARK_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/landmark/ws"
		}
		return url
	case FrameStream:
		url := os.Getenv("AI_FRAME_URL")
		if url == "" {
			url = "ws://localhost:8000/api/v1/frame/ws"
		}
		return url
	default:
		return ""
	}
}
