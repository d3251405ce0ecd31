package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/device/schema"
	"github.com/urmzd/homelink/pkg/fulfillment"
	"github.com/urmzd/homelink/pkg/homegraph"
	"github.com/urmzd/homelink/pkg/oauth"
)

type fakeNotifier struct {
	syncBody    json.RawMessage
	err         error
	reported    map[string]device.State
	reportAgent string
}

func (n *fakeNotifier) RequestSync(ctx context.Context, agentUserID string) (json.RawMessage, error) {
	return n.syncBody, n.err
}

func (n *fakeNotifier) ReportState(ctx context.Context, agentUserID string, states map[string]device.State) (string, error) {
	n.reportAgent = agentUserID
	n.reported = states
	return "report-1", n.err
}

func (n *fakeNotifier) IsConfigured() bool { return true }

func newTestRouter(t *testing.T, notifier homegraph.Notifier) (*Router, *device.Store) {
	t.Helper()

	registry, err := device.DefaultRegistry()
	require.NoError(t, err)
	store := device.NewStore(registry)
	executor := device.NewExecutor(registry, store, schema.NewValidator())

	engine, err := oauth.NewEngine(oauth.Config{Subject: "123", Secret: []byte("test-secret")})
	require.NoError(t, err)

	if notifier == nil {
		notifier = homegraph.NewNullNotifier()
	}

	return NewRouter(Services{
		Registry:   registry,
		Store:      store,
		Executor:   executor,
		Dispatcher: fulfillment.NewDispatcher("123", registry, store, executor),
		Auth:       engine,
		Notifier:   notifier,
	}), store
}

func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestFulfillmentEndpoint(t *testing.T) {
	t.Run("SYNC lists the catalog", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		body := `{"requestId": "r1", "inputs": [{"intent": "action.devices.SYNC"}]}`
		w := serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			RequestID string `json:"requestId"`
			Payload   struct {
				AgentUserID string          `json:"agentUserId"`
				Devices     []device.Device `json:"devices"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "r1", resp.RequestID)
		assert.Equal(t, "123", resp.Payload.AgentUserID)
		assert.Len(t, resp.Payload.Devices, 4)
		assert.Equal(t, []string{"My Washer"}, resp.Payload.Devices[0].Name.DefaultNames)
	})

	t.Run("EXECUTE then QUERY", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		exec := `{"requestId": "r2", "inputs": [{"intent": "action.devices.EXECUTE", "payload": {"commands": [{
			"devices": [{"id": "washer"}],
			"execution": [{"command": "action.devices.commands.StartStop", "params": {"start": true}}]
		}]}}]}`
		w := serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(exec)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"requestId": "r2", "payload": {"commands": [{
			"ids": ["washer"], "status": "SUCCESS", "states": {"online": true, "isRunning": true}
		}]}}`, w.Body.String())

		query := `{"requestId": "r3", "inputs": [{"intent": "action.devices.QUERY", "payload": {"devices": [{"id": "washer"}]}}]}`
		w = serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(query)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Payload struct {
				Devices map[string]device.State `json:"devices"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Payload.Devices["washer"].IsRunning)
	})

	t.Run("DISCONNECT returns an empty object", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		body := `{"requestId": "r4", "inputs": [{"intent": "action.devices.DISCONNECT"}]}`
		w := serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("wrongly typed payload is a protocol error", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		body := `{"requestId": "m-1", "inputs": [{"intent": "action.devices.QUERY", "payload": {"devices": "fan"}}]}`
		w := serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			RequestID string `json:"requestId"`
			Payload   struct {
				ErrorCode   string `json:"errorCode"`
				DebugString string `json:"debugString"`
			} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "m-1", resp.RequestID)
		assert.Equal(t, "protocolError", resp.Payload.ErrorCode)
		assert.NotEmpty(t, resp.Payload.DebugString)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(`{"inputs":`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("state survives fakeauth, consent page and login", func(t *testing.T) {
		for _, state := range []string{"s", "a+b", "50%off", "x&y=z", "abc%2Fdef", "xyz+/=%41", "a b"} {
			t.Run(state, func(t *testing.T) {
				r, _ := newTestRouter(t, nil)

				q := url.Values{"redirect_uri": {"https://client.example/cb"}, "state": {state}}
				w := serve(r, httptest.NewRequest(http.MethodGet, "/fakeauth?"+q.Encode(), nil))
				require.Equal(t, http.StatusFound, w.Code)
				loginURL, err := url.Parse(w.Header().Get("Location"))
				require.NoError(t, err)
				assert.Equal(t, "/login", loginURL.Path)

				w = serve(r, httptest.NewRequest(http.MethodGet, loginURL.String(), nil))
				require.Equal(t, http.StatusOK, w.Code)

				form := url.Values{"responseurl": {loginURL.Query().Get("responseurl")}}
				req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				w = serve(r, req)
				require.Equal(t, http.StatusFound, w.Code)

				final, err := url.Parse(w.Header().Get("Location"))
				require.NoError(t, err)
				assert.Equal(t, "client.example", final.Host)
				assert.Equal(t, "/cb", final.Path)
				assert.NotEmpty(t, final.Query().Get("code"))
				assert.Equal(t, state, final.Query().Get("state"))
			})
		}
	})

	t.Run("fakeauth without redirect_uri is rejected", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/fakeauth?state=s", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error": "invalid_request", "error_description": "invalid_request: redirect_uri is required"}`, w.Body.String())
	})

	t.Run("login round trip redirects to the decoded url", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)
		responseURL := "https%3A%2F%2Fexample.com%2Fcb%3Fcode%3Dabc%26state%3Ds"

		w := serve(r, httptest.NewRequest(http.MethodGet, "/login?responseurl="+url.QueryEscape(responseURL), nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="`+responseURL+`"`)

		form := url.Values{"responseurl": {responseURL}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w = serve(r, req)

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/cb?code=abc&state=s", w.Header().Get("Location"))
	})

	t.Run("login without responseurl is rejected", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := serve(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("full code exchange", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		q := url.Values{"redirect_uri": {"https://example.com/cb"}, "state": {"s"}}
		w := serve(r, httptest.NewRequest(http.MethodGet, "/fakeauth?"+q.Encode(), nil))
		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		callback, err := oauth.ResolveResponseURL(loc.Query().Get("responseurl"))
		require.NoError(t, err)
		target, err := url.Parse(callback)
		require.NoError(t, err)
		code := target.Query().Get("code")
		require.NotEmpty(t, code)

		form := url.Values{"code": {code}}
		req := httptest.NewRequest(http.MethodPost, "/faketoken?grant_type=authorization_code", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w = serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		var tok map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
		assert.Equal(t, "bearer", tok["token_type"])
		assert.NotEmpty(t, tok["access_token"])
		assert.NotEmpty(t, tok["refresh_token"])
		assert.Equal(t, float64(86400), tok["expires_in"])

		// The code was consumed by the first exchange.
		req = httptest.NewRequest(http.MethodPost, "/faketoken?grant_type=authorization_code", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w = serve(r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"invalid_grant"`)
	})

	t.Run("refresh grant from the form body", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"r"}}
		req := httptest.NewRequest(http.MethodPost, "/faketoken", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := serve(r, req)

		require.Equal(t, http.StatusOK, w.Code)
		var tok map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
		assert.NotContains(t, tok, "refresh_token")
		assert.Equal(t, float64(86400), tok["expires_in"])
	})

	t.Run("unknown grant type is rejected", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/faketoken?grant_type=password", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"unsupported_grant_type"`)

		w = serve(r, httptest.NewRequest(http.MethodPost, "/faketoken", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"invalid_request"`)
	})
}

func TestSyncEndpoints(t *testing.T) {
	t.Run("requestsync without credentials fails", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/requestsync", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "Error requesting sync: "))
	})

	t.Run("requestsync relays the upstream body", func(t *testing.T) {
		r, _ := newTestRouter(t, &fakeNotifier{syncBody: json.RawMessage(`{}`)})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/requestsync", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("requestsync upstream error", func(t *testing.T) {
		r, _ := newTestRouter(t, &fakeNotifier{err: errors.New("permission denied")})

		w := serve(r, httptest.NewRequest(http.MethodPost, "/requestsync", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error requesting sync: permission denied", w.Body.String())
	})

	t.Run("reportstate without credentials is a no-op", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/reportstate", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{}`, w.Body.String())
	})

	t.Run("reportstate sends the store snapshot", func(t *testing.T) {
		n := &fakeNotifier{}
		r, store := newTestRouter(t, n)
		_, err := store.Apply("fan", device.Delta{device.FieldOn: false})
		require.NoError(t, err)

		w := serve(r, httptest.NewRequest(http.MethodPost, "/reportstate", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"requestId": "report-1", "devices": 4}`, w.Body.String())
		assert.Equal(t, "123", n.reportAgent)
		assert.False(t, n.reported["fan"].On)
	})
}

func TestDeviceEndpoints(t *testing.T) {
	t.Run("list devices with state", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count   int `json:"count"`
			Devices []struct {
				ID    string       `json:"id"`
				State device.State `json:"state"`
			} `json:"devices"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 4, resp.Count)
		assert.Equal(t, "washer", resp.Devices[0].ID)
		assert.True(t, resp.Devices[0].State.On)
	})

	t.Run("unknown device is 404", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/devices/toaster", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/devices/toaster/state", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("run command", func(t *testing.T) {
		r, store := newTestRouter(t, nil)

		body := `{"command": "action.devices.commands.OnOff", "params": {"on": false}}`
		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/devices/light/commands", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)

		st, err := store.Get("light")
		require.NoError(t, err)
		assert.False(t, st.On)
	})

	t.Run("command errors map to status codes", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)

		cases := []struct {
			id, body string
			status   int
		}{
			{"closet", `{"command": "action.devices.commands.OnOff", "params": {"on": true}}`, http.StatusUnprocessableEntity},
			{"fan", `{"command": "action.devices.commands.OnOff", "params": {"on": 1}}`, http.StatusBadRequest},
			{"fan", `{"command": "action.devices.commands.Dock", "params": {}}`, http.StatusBadRequest},
			{"toaster", `{"command": "action.devices.commands.OnOff", "params": {"on": true}}`, http.StatusNotFound},
			{"fan", `{"params": {"on": true}}`, http.StatusBadRequest},
		}
		for _, tc := range cases {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/devices/"+tc.id+"/commands", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, w.Code, "%s %s", tc.id, tc.body)
		}
	})
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "not_configured", resp["homegraph"])
	assert.Equal(t, float64(4), resp["devices"])
}

func TestRequestID(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))
}

func TestRouterServer(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	srv := r.Server(":8080")
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, r.Handler(), srv.Handler)
	assert.Equal(t, ReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, ReadTimeout, srv.ReadTimeout)
	assert.Equal(t, IdleTimeout, srv.IdleTimeout)
	assert.Zero(t, srv.WriteTimeout)
}

func TestLevelForStatus(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, levelForStatus(http.StatusOK))
	assert.Equal(t, zerolog.InfoLevel, levelForStatus(http.StatusFound))
	assert.Equal(t, zerolog.WarnLevel, levelForStatus(http.StatusNotFound))
	assert.Equal(t, zerolog.ErrorLevel, levelForStatus(http.StatusBadGateway))
}

func TestEventsStream(t *testing.T) {
	r, store := newTestRouter(t, nil)
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
		return event, data
	}

	event, _ := readEvent()
	require.Equal(t, "connected", event)

	_, err = store.Apply("washer", device.Delta{device.FieldIsPaused: true})
	require.NoError(t, err)

	event, data := readEvent()
	require.Equal(t, "state", event)

	var ev device.StateEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, "washer", ev.DeviceID)
	assert.True(t, ev.State.IsPaused)
}

func TestBearerSubject(t *testing.T) {
	secret := []byte("test-secret")
	engine, err := oauth.NewEngine(oauth.Config{Subject: "123", Secret: secret})
	require.NoError(t, err)
	tok, err := engine.Exchange(oauth.TokenRequest{GrantType: oauth.GrantRefreshToken})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", BearerSubject(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(tokenSubjectKey))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + tok.AccessToken, "123"},
		{"no header", "", ""},
		{"bad signature", "Bearer not-a-jwt", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
