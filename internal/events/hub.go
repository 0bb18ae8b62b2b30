package events

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second


type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// Hub pushes booking events to the front-desk screens of a branch.
type Hub struct {
	branches map[int64]map[*conn]struct{}
	mutex    sync.RWMutex
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// NewHub accepts handshakes without an Origin header, from the server's own host,
// or from one of allowedOrigins.
func NewHub(allowedOrigins ...string) *Hub {
	h := &Hub{
		branches: make(map[int64]map[*conn]struct{}),
		origins:  make(map[string]bool, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		h.origins[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

func (h *Hub) register(branchID int64, c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.branches[branchID]
	if !ok {
		set = make(map[*conn]struct{})
		h.branches[branchID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(branchID int64, c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if set, ok := h.branches[branchID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			_ = c.ws.Close()
		}
		if len(set) == 0 {
			delete(h.branches, branchID)
		}
	}
}

func (h *Hub) ConnectedCount(branchID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.branches[branchID])
}

// Publish sends booking events to the branch they belong to. Other events are ignored.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	if !ev.IsBooking() || ev.BranchID == 0 {
		return nil
	}

	h.mutex.RLock()
	targets := make([]*conn, 0, len(h.branches[ev.BranchID]))
	for c := range h.branches[ev.BranchID] {
		targets = append(targets, c)
	}
	h.mutex.RUnlock()

	for _, c := range targets {
		if err := c.writeJSON(ev); err != nil {
			h.unregister(ev.BranchID, c)
		}
	}
	return nil
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for branchID, set := range h.branches {
		for c := range set {
			_ = c.ws.Close()
		}
		delete(h.branches, branchID)
	}
}

// ServeWS upgrades GET /ws/frontdesk?branchId=. Staff tokens default to their own branch.
func (h *Hub) ServeWS(c *gin.Context) {
	branchID, err := strconv.ParseInt(c.Query("branchId"), 10, 64)
	if err != nil || branchID <= 0 {
		branchID = c.GetInt64("branch_id")
	}
	if branchID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "branchId is required"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := &conn{ws: ws}
	h.register(branchID, cl)
	log.Debug().Int64("branch_id", branchID).Msg("front desk connected")

	// Drain reads so close frames are processed; the board is push-only.
	go func() {
		defer h.unregister(branchID, cl)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
