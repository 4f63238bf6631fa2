package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/gen"
	"github.com/bws/jdgen/compiler/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer serves a project with the test definitions and the Tag
// fragment generated.
func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	dir := newProject(t)
	_, err := execute(t, dir, "generate")
	require.NoError(t, err)
	_, err = execute(t, dir, "fragment", "add", filepath.Join("testdata", "single", "tag.yaml"))
	require.NoError(t, err)
	p, err := LoadProject(filepath.Join(dir, DefaultProjectFile))
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	g, err := gen.New(p.Options(logger)...)
	require.NoError(t, err)
	srv := newServer(g, filepath.Join(dir, state.DefaultPath), logger)
	ts := httptest.NewServer(srv.router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, b
}

func post(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, b
}

func TestServeState(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("fragments", func(t *testing.T) {
		code, body := get(t, ts.URL+"/api/fragments")
		require.Equal(t, http.StatusOK, code)
		var got []FragmentInfo
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 4)
		assert.Equal(t, FragmentInfo{Name: "LINE_ITEM", Entity: "Line Item", Package: "com.acme.billing", Parent: "Invoice", Attributes: 1}, got[2])
	})
	t.Run("fragment", func(t *testing.T) {
		code, body := get(t, ts.URL+"/api/fragments/Invoice")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body), `"entity":"Invoice"`)
		assert.Contains(t, string(body), `"view":{`)

		code, body = get(t, ts.URL+"/api/fragments/Order")
		assert.Equal(t, http.StatusNotFound, code)
		assert.Contains(t, string(body), "fragment")
	})
	t.Run("relationships", func(t *testing.T) {
		code, body := get(t, ts.URL+"/api/relationships")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body), `"association":"MANY_TO_ONE"`)
	})
	t.Run("documents", func(t *testing.T) {
		code, body := get(t, ts.URL+"/api/documents/")
		require.Equal(t, http.StatusOK, code)
		var paths []string
		require.NoError(t, json.Unmarshal(body, &paths))
		assert.Contains(t, paths, "sql/app-category.sql")

		code, body = get(t, ts.URL+"/api/documents/sql/app-category.sql")
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body), "INSERT INTO bws_category (category_id, name) VALUES (1, 'Invoice Status');")
		assert.NotContains(t, string(body), "@@")

		code, _ = get(t, ts.URL+"/api/documents/sql/missing.sql")
		assert.Equal(t, http.StatusNotFound, code)
	})
	t.Run("history", func(t *testing.T) {
		code, body := get(t, ts.URL+"/api/history")
		require.Equal(t, http.StatusOK, code)
		var h []state.Entry
		require.NoError(t, json.Unmarshal(body, &h))
		require.Len(t, h, 3)
		assert.Equal(t, gen.KindInit, h[0].Kind)
		assert.Equal(t, gen.KindBatch, h[1].Kind)
		assert.Equal(t, "Tag", h[2].Subject)
	})
}

func TestServePlan(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("fragment", func(t *testing.T) {
		body := `{"fragment":{"entity":"Note","package":"com.acme.crm","attributes":[{"name":"Text","kind":"TEXT","maxLength":200,"column":true}]}}`
		code, b := post(t, ts.URL+"/api/plan/fragment", body)
		require.Equal(t, http.StatusOK, code, string(b))
		var plan gen.Plan
		require.NoError(t, json.Unmarshal(b, &plan))
		assert.Equal(t, gen.KindFragment, plan.Kind)
		assert.Equal(t, []string{"Note"}, plan.Subjects)
		assert.NotEmpty(t, plan.Report.Created)

		// Dry runs leave the project untouched.
		code, b = get(t, ts.URL+"/api/fragments/Note")
		assert.Equal(t, http.StatusNotFound, code, string(b))
	})
	t.Run("fragment exists", func(t *testing.T) {
		body := `{"fragment":{"entity":"Invoice","package":"com.acme.billing","attributes":[{"name":"Number","kind":"TEXT","maxLength":20}]}}`
		code, b := post(t, ts.URL+"/api/plan/fragment", body)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, string(b), "fragment already generated")
	})
	t.Run("bad body", func(t *testing.T) {
		code, _ := post(t, ts.URL+"/api/plan/fragment", `{"view":{}}`)
		assert.Equal(t, http.StatusBadRequest, code)
		code, _ = post(t, ts.URL+"/api/plan/relationship", `{"association":"ONE_TO_ONE"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
	t.Run("relationship", func(t *testing.T) {
		body := `{"source":"Customer","target":"Tag","targetAttribute":"Label","association":"MANY_TO_MANY"}`
		code, b := post(t, ts.URL+"/api/plan/relationship", body)
		require.Equal(t, http.StatusOK, code, string(b))
		assert.Contains(t, string(b), `"kind":"relationship"`)
	})
	t.Run("relationship exists", func(t *testing.T) {
		body := `{"source":"Customer","target":"Invoice","targetAttribute":"Number","association":"MANY_TO_ONE"}`
		code, _ := post(t, ts.URL+"/api/plan/relationship", body)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})
}

func TestServeStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{jdgen.NewNotFoundError("fragment"), http.StatusNotFound},
		{jdgen.ErrNotInitialized, http.StatusConflict},
		{gen.NewConfigError("ConfigurationPackage", "org.other", "project was initialized with com.acme.configuration"), http.StatusConflict},
		{gen.NewDefinitionError("Invoice", "", "bad", nil), http.StatusUnprocessableEntity},
		{gen.NewRelationshipError("A", "B", "bad", nil), http.StatusUnprocessableEntity},
		{gen.NewValidationError("a.java", "FieldIds.X", "bad"), http.StatusUnprocessableEntity},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status(tt.err), "%v", tt.err)
	}
}

func TestServeNotInitialized(t *testing.T) {
	g, err := gen.New(gen.WithConfigurationPackage(testPackage), gen.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	srv := newServer(g, filepath.Join(t.TempDir(), "state.msgpack"), slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	code, _ := get(t, ts.URL+"/api/fragments")
	assert.Equal(t, http.StatusConflict, code)
}

func TestServePackageMismatch(t *testing.T) {
	dir := newProject(t)
	logger := slog.New(slog.DiscardHandler)
	g, err := gen.New(gen.WithConfigurationPackage("org.other.configuration"), gen.WithLogger(logger))
	require.NoError(t, err)
	srv := newServer(g, filepath.Join(dir, state.DefaultPath), logger)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	body := `{"fragment":{"entity":"Note","package":"com.acme.crm","attributes":[{"name":"Text","kind":"TEXT","maxLength":200}]}}`
	code, b := post(t, ts.URL+"/api/plan/fragment", body)
	assert.Equal(t, http.StatusConflict, code, string(b))
	assert.Contains(t, string(b), "org.other.configuration")
}

func TestServeEvents(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.hub.publish(&Event{Type: "lint", Lint: &LintResult{Dir: "definitions", Definitions: 4}})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events"
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer wc.Close()

	read := func() Event {
		t.Helper()
		require.NoError(t, wc.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, b, err := wc.ReadMessage()
		require.NoError(t, err)
		var e Event
		require.NoError(t, json.NewDecoder(bytes.NewReader(b)).Decode(&e))
		return e
	}

	// The last event is replayed on connect.
	e := read()
	assert.Equal(t, "lint", e.Type)
	require.NotNil(t, e.Lint)
	assert.Equal(t, 4, e.Lint.Definitions)

	srv.hub.publish(&Event{Type: "lint", Lint: &LintResult{Dir: "definitions", Error: "load: broken"}})
	e = read()
	require.NotNil(t, e.Lint)
	assert.False(t, e.Lint.OK())
	assert.Equal(t, 1, srv.hub.len())

	require.NoError(t, wc.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return srv.hub.len() == 0 }, 5*time.Second, 10*time.Millisecond)
}
