package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/services"
	"github.com/yoockh/outreach/internal/utils"
	"github.com/yoockh/outreach/internal/workers"
)

// WSHandler streams server-driven "clear all" runs to the admin page.
type WSHandler struct {
	entries  services.EntryService
	log      *logrus.Logger
	upgrader websocket.Upgrader

	// Delay and MaxBatches override the runner defaults when non-zero.
	Delay      time.Duration
	MaxBatches int
}

// NewWSHandler accepts browser handshakes from the server's own origin and
// from allowedOrigins ("https://admin.example.com"). The session cookie is
// sent on cross-site handshakes too, so any other Origin is refused.
func NewWSHandler(entries services.EntryService, l *logrus.Logger, allowedOrigins ...string) *WSHandler {
	return &WSHandler{
		entries:  entries,
		log:      l,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			set[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// not a browser; these clients must send a bearer token
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

type wsServerMsg struct {
	Type string `json:"type"` // progress | done | error

	*workers.ClearProgress
	Result *workers.ClearResult `json:"result,omitempty"`

	Code    utils.Code `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// ClearEntriesWS: GET /ws/admin/clear-entries?batchSize=
func (h *WSHandler) ClearEntriesWS(c *gin.Context) {
	batchSize := services.DefaultBatchSize
	if v := c.Query("batchSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "WSHandler.ClearEntriesWS", "batchSize must be a number", err)
			return
		}
		batchSize = n
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the 4xx
		h.log.WithError(err).WithField("origin", c.GetHeader("Origin")).Warn("websocket handshake refused")
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// reader: a close or any read error stops the run
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	runner := &workers.ClearAllRunner{
		Deleter:    h.entries,
		BatchSize:  services.ClampBatchSize(batchSize),
		Delay:      h.Delay,
		MaxBatches: h.MaxBatches,
		Logger:     h.log,
		OnBatch: func(p workers.ClearProgress) {
			if err := wc.writeJSON(wsServerMsg{Type: "progress", ClearProgress: &p}); err != nil {
				cancel()
			}
		},
	}

	res, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInternal, Message: err.Error(), Result: &res})
	} else {
		_ = wc.writeJSON(wsServerMsg{Type: "done", Result: &res})
	}

	_ = wc.writeCloseNormal()
}

func (w *wsConn) writeCloseNormal() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
