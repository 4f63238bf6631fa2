package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/schema"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	// sendBuffer is the number of events queued per client before the
	// client is dropped.
	sendBuffer = 16
)

// Event is a message pushed to /ws/events clients.
type Event struct {
	Type string      `json:"type"`
	Lint *LintResult `json:"lint,omitempty"`
}

// client is one websocket connection of the hub.
type client struct {
	wc   *websocket.Conn
	send chan []byte
}

// hub fans events out to websocket clients. New clients receive the last
// event first.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	logger  *slog.Logger
	upgr    websocket.Upgrader
}

func newHub(logger *slog.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

// publish sends e to every client. Clients whose buffer is full are
// disconnected.
func (h *hub) publish(e *Event) {
	b, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("encode event", "type", e.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Warn("dropping slow events client", "remote", c.wc.RemoteAddr().String())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *hub) signon(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
}

func (h *hub) signoff(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// len returns the number of connected clients.
func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) serve(ctx *gin.Context) {
	wc, err := h.upgr.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{wc: wc, send: make(chan []byte, sendBuffer)}
	h.signon(c)
	go c.write()
	c.read()
	h.signoff(c)
}

// read discards client messages until the connection closes.
func (c *client) read() {
	c.wc.SetReadLimit(512)
	for {
		if _, _, err := c.wc.NextReader(); err != nil {
			return
		}
	}
}

func (c *client) write() {
	t := time.NewTicker(pingInterval)
	defer func() {
		t.Stop()
		c.wc.Close()
	}()
	for {
		select {
		case b, ok := <-c.send:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.wc.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// server exposes the project state and dry runs over HTTP.
type server struct {
	g         *gen.Generator
	statePath string
	hub       *hub
	logger    *slog.Logger
}

func newServer(g *gen.Generator, statePath string, logger *slog.Logger) *server {
	return &server{g: g, statePath: statePath, hub: newHub(logger), logger: logger}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	api := r.Group("/api")
	{
		api.GET("/fragments", s.listFragments)
		api.GET("/fragments/:name", s.getFragment)
		api.GET("/relationships", s.listRelationships)
		api.GET("/documents/*path", s.getDocument)
		api.GET("/history", s.listHistory)
		api.POST("/plan/fragment", s.planFragment)
		api.POST("/plan/relationship", s.planRelationship)
	}
	r.GET("/ws/events", s.hub.serve)
	return r
}

func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// status maps generator errors to HTTP status codes.
func status(err error) int {
	switch {
	case jdgen.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, jdgen.ErrNotInitialized), gen.IsConfigError(err):
		return http.StatusConflict
	case gen.IsDefinitionError(err), gen.IsRelationshipError(err),
		gen.IsPrerequisiteError(err), gen.IsValidationError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *server) fail(c *gin.Context, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// state reads the project state, answering the request on failure.
func (s *server) state(c *gin.Context) (*state.State, bool) {
	st, err := state.Load(s.statePath)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return st, true
}

// FragmentInfo is the list form of a generated fragment.
type FragmentInfo struct {
	Name       string `json:"name"`
	Entity     string `json:"entity"`
	Package    string `json:"package"`
	Parent     string `json:"parent,omitempty"`
	Attributes int    `json:"attributes"`
}

func (s *server) listFragments(c *gin.Context) {
	st, ok := s.state(c)
	if !ok {
		return
	}
	out := make([]FragmentInfo, 0, len(st.Fragments))
	for _, name := range st.FragmentNames() {
		f := st.Fragments[name].Definition
		out = append(out, FragmentInfo{
			Name:       name,
			Entity:     f.EntityName,
			Package:    f.PackageName,
			Parent:     f.ParentEntityName,
			Attributes: len(f.Attributes),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) getFragment(c *gin.Context) {
	st, ok := s.state(c)
	if !ok {
		return
	}
	f, ok := st.Fragment(c.Param("name"))
	if !ok {
		s.fail(c, jdgen.NewNotFoundErrorWithKey("fragment", c.Param("name")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"definition": f.Definition, "view": f.View})
}

func (s *server) listRelationships(c *gin.Context) {
	st, ok := s.state(c)
	if !ok {
		return
	}
	rels := st.Relationships
	if rels == nil {
		rels = []*schema.Relationship{}
	}
	c.JSON(http.StatusOK, rels)
}

// getDocument renders a stored document as plain text. Without a path it
// lists the stored documents.
func (s *server) getDocument(c *gin.Context) {
	st, ok := s.state(c)
	if !ok {
		return
	}
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusOK, slices.Sorted(maps.Keys(st.Documents)))
		return
	}
	d, err := st.Document(path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.String(http.StatusOK, d.Render())
}

func (s *server) listHistory(c *gin.Context) {
	st, ok := s.state(c)
	if !ok {
		return
	}
	h := st.History
	if h == nil {
		h = []*state.Entry{}
	}
	c.JSON(http.StatusOK, h)
}

type planFragmentRequest struct {
	Fragment *schema.Fragment    `json:"fragment" binding:"required"`
	View     *schema.ViewOptions `json:"view"`
}

func (s *server) planFragment(c *gin.Context) {
	var req planFragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := s.state(c)
	if !ok {
		return
	}
	v := req.View
	if v == nil {
		v = req.Fragment.DefaultView()
	}
	plan, err := s.g.AddFragment(c.Request.Context(), st, req.Fragment, v)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *server) planRelationship(c *gin.Context) {
	var req schema.Relationship
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, ok := s.state(c)
	if !ok {
		return
	}
	plan, err := s.g.AddRelationship(c.Request.Context(), st, &req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project state, dry runs and lint events over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.project()
			if err != nil {
				return err
			}
			g, err := a.generator(p)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = p.Serve.Addr
			}
			ctx := cmd.Context()
			statePath := a.path(g.Config().StatePath)
			srv := newServer(g, statePath, a.logger)
			dir := a.path(p.Definitions)
			relint := func() {
				srv.hub.publish(&Event{Type: "lint", Lint: lint(ctx, g, statePath, dir, p.Workers)})
			}
			if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
				relint()
				go func() {
					if err := watch(ctx, dir, a.logger, relint); err != nil {
						a.logger.Error("watch stopped", "error", err)
					}
				}()
			}

			gin.SetMode(gin.ReleaseMode)
			hs := &http.Server{Addr: addr, Handler: srv.router(), ReadHeaderTimeout: 10 * time.Second}
			errc := make(chan error, 1)
			go func() { errc <- hs.ListenAndServe() }()
			a.logger.Info("serving", "addr", addr, "state", statePath)
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdown)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from the project file)")
	return cmd
}
