package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pdf2deck/backend/internal/convert"
)

// WebSocket message types for the job progress protocol (server -> client).
const (
	MsgTypeProgress = "progress"
	MsgTypeComplete = "complete"
	MsgTypeError    = "error"
)

// jobPollInterval is how often the socket re-samples job state.
const jobPollInterval = 250 * time.Millisecond

// WSJobUpdate is one progress frame pushed to the client.
type WSJobUpdate struct {
	Type string      `json:"type"`
	Job  convert.Job `json:"job"`
}

// WebSocketHandler pushes conversion job progress to clients.
type WebSocketHandler struct {
	jobs     *convert.Manager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a job progress handler. allowedOrigins is
// the same list handed to the CORS middleware; an empty list restricts
// sockets to same-origin browsers.
func NewWebSocketHandler(jobs *convert.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		jobs: jobs,
		upgrader: websocket.Upgrader{
			CheckOrigin: newOriginChecker(allowedOrigins),
		},
	}
}

// newOriginChecker builds the upgrade origin policy: same-origin requests
// and non-browser clients (no Origin header) always pass, "*" opens the
// socket up, anything else must match an allowed origin exactly.
func newOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]struct{})
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[strings.ToLower(o)] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// HandleJobSocket upgrades the connection and streams snapshots of one
// job until it reaches a terminal state or the client goes away.
func (wsh *WebSocketHandler) HandleJobSocket(c echo.Context) error {
	id := c.Param("jobId")
	if _, ok := wsh.jobs.Snapshot(id); !ok {
		return NewNotFoundError("job", id)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	var last convert.Job
	for range ticker.C {
		job, ok := wsh.jobs.Snapshot(id)
		if !ok {
			// Job GC'd underneath us; nothing more to report.
			return nil
		}

		if job.Status.Terminal() {
			frame := WSJobUpdate{Type: MsgTypeComplete, Job: job}
			if job.Status == convert.StatusError {
				frame.Type = MsgTypeError
			}
			_ = ws.WriteJSON(frame)
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}

		// Only push when something moved.
		if job.Progress != last.Progress || job.Stage != last.Stage {
			if err := ws.WriteJSON(WSJobUpdate{Type: MsgTypeProgress, Job: job}); err != nil {
				return nil
			}
			last = job
		}
	}
	return nil
}
