package http_test

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/testutils"
	httpAdapter "github.com/aretw0/arttic/pkg/adapters/http"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *httptest.Server
	sess   *arttic.Session
	dialer *testutils.FakeDialer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	dialer := &testutils.FakeDialer{}
	sess := arttic.New(dialer, "ws://backend/ws", testutils.NewFakeBackend(),
		arttic.WithClock(clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
		arttic.WithMetrics(metrics.New(reg)),
	)
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(sess.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv := httptest.NewServer(httpAdapter.NewHandler(ctx, sess, httpAdapter.WithGatherer(reg)))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, sess: sess, dialer: dialer}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_State(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st arttic.Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, "open", st.Connection)
	assert.Equal(t, []string{"sd15-base", "sdxl-turbo"}, st.Models)
	assert.Len(t, st.Nodes, len(domain.PermanentNodes))
}

func TestServer_Nodes(t *testing.T) {
	f := newFixture(t)
	_, body := f.do(t, http.MethodGet, "/nodes", "")

	var views []httpAdapter.NodeView
	require.NoError(t, json.Unmarshal(body, &views))
	require.Len(t, views, 4)
	for _, v := range views {
		assert.NotEmpty(t, v.Body, v.Type)
		assert.Equal(t, v.Type.Title(), v.Title)
	}
}

func TestServer_PutParams(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/params", `{"steps": 12, "prompt": "fog"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := f.sess.Store().Snapshot()
	assert.Equal(t, 12, snap.Int(domain.KeySteps))
	assert.Equal(t, "fog", snap.String(domain.KeyPrompt))

	resp, _ = f.do(t, http.MethodPut, "/params", `{"temperature": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/params", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_PutParamsRejectsBadValues(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.SetParam(domain.KeySteps, 30))

	cases := map[string]string{
		"string for int":     `{"steps": "40"}`,
		"null prompt":        `{"prompt": null}`,
		"steps below range":  `{"steps": 0}`,
		"fractional steps":   `{"steps": 12.5}`,
		"bool as string":     `{"vae_tiling": "yes"}`,
		"unknown key":        `{"temperature": 1}`,
		"empty object":       `{}`,
		"mixed good and bad": `{"prompt": "fog", "guidance": 99}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, data := f.do(t, http.MethodPut, "/params", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
			assert.Contains(t, string(data), `"error"`)
		})
	}

	snap := f.sess.Store().Snapshot()
	assert.Equal(t, 30, snap.Int(domain.KeySteps))
	assert.Empty(t, snap.String(domain.KeyPrompt))
}

func TestServer_PutParamsDecodesInitImage(t *testing.T) {
	f := newFixture(t)
	png := []byte("\x89PNG\r\n")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	resp, data := f.do(t, http.MethodPut, "/params", `{"init_image": "`+uri+`", "strength": 0.4, "seed": 4294967295}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	snap := f.sess.Store().Snapshot()
	assert.Equal(t, png, snap.Get(domain.KeyInitImage))
	assert.Equal(t, int64(4294967295), snap.Get(domain.KeySeed))
	assert.InDelta(t, 0.4, snap.Get(domain.KeyStrength), 1e-9)

	resp, _ = f.do(t, http.MethodPut, "/params", `{"init_image": "data:image/png,raw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, png, f.sess.Store().Snapshot().Get(domain.KeyInitImage))
}

func TestServer_Actions(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/actions/generate", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), domain.ErrNoModelLoaded.Error())

	resp, _ = f.do(t, http.MethodPost, "/actions/load_model", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	sent := f.dialer.Last().Sent(t)
	require.Len(t, sent, 1)
	assert.Equal(t, "load_model", sent[0].Action)

	resp, body = f.do(t, http.MethodPost, "/actions/launch_rockets", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "action")
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `arttic_channel_dials_total{outcome="ok"} 1`)
}

func TestServer_EventsStreamParamDiffs(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/events?watch=params")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream ended before %q", prefix)
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("data: connected")
	require.NoError(t, f.sess.SetParam(domain.KeySteps, 44))
	waitFor("event: params")
	data := waitFor("data: ")

	var diff domain.ParamsDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &diff))
	assert.EqualValues(t, 44, diff.Changed[domain.KeySteps])
}

func TestServer_EventsRejectsUnknownWatch(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/events?watch=gallery", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "watch")
}

func TestServer_ServesOpenAPIDocument(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "operationId: PutParams")

	doc, err := httpAdapter.LoadSpec()
	require.NoError(t, err)
	for _, path := range []string{"/health", "/info", "/state", "/nodes", "/notifications", "/gallery", "/events", "/params", "/actions/{action}"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}
}

func TestServer_NodesWhileEventsApply(t *testing.T) {
	f := newFixture(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			f.sess.OnModelLoaded(domain.ModelLoaded{StatusMessage: "Model ready.", ModelType: string(domain.ModelSD15)})
			f.sess.OnModelUnloaded(domain.ModelUnloaded{StatusMessage: "Model unloaded."})
		}
	}()

	for {
		resp, body := f.do(t, http.MethodGet, "/nodes", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var views []httpAdapter.NodeView
		require.NoError(t, json.Unmarshal(body, &views))
		for _, n := range f.sess.Canvas().Nodes() {
			_ = n.View.(nodes.View).Body()
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
