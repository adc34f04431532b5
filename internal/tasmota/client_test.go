package tasmota

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
)

// hostOf strips the scheme from an httptest server URL so it can be used as
// a device address.
func hostOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestSendCommand_OK(t *testing.T) {
	var gotCmnd, gotUser, gotPass string
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCmnd = r.URL.Query().Get("cmnd")
		gotUser, gotPass, gotAuth = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"POWER":"ON"}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{Username: "admin", Password: "secret"}, logger.Nop())
	body, err := c.SendCommand(context.Background(), hostOf(srv), CmdPowerToggle, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "ON", body["POWER"])
	assert.Equal(t, CmdPowerToggle, gotCmnd)
	require.True(t, gotAuth)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestSendCommand_NoAuthHeaderWithoutCredentials(t *testing.T) {
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, gotAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), hostOf(srv), CmdStatusAll, time.Second)

	require.NoError(t, err)
	assert.False(t, gotAuth)
}

func TestSendCommand_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), hostOf(srv), CmdStatusAll, time.Second)

	assert.ErrorIs(t, err, ErrNoData)
}

func TestSendCommand_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), hostOf(srv), CmdStatusAll, time.Second)

	assert.ErrorIs(t, err, ErrNoData)
}

func TestSendCommand_UnknownCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Command":"Unknown"}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), hostOf(srv), "Bogus 1", time.Second)

	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestSendCommand_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	start := time.Now()
	_, err := c.SendCommand(context.Background(), hostOf(srv), CmdStatusAll, 20*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	// Single attempt only: the call must give up near the budget, not retry.
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestSendCommand_ConnectionRefused(t *testing.T) {
	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), "127.0.0.1:1", CmdStatusAll, time.Second)

	assert.ErrorIs(t, err, ErrNoData)
}

func TestCommandURL_Escaping(t *testing.T) {
	got := commandURL("192.168.1.50", "Power TOGGLE")
	assert.Equal(t, "http://192.168.1.50/cm?cmnd=Power+TOGGLE", got)
}

func TestIsUnknownCommand(t *testing.T) {
	assert.True(t, isUnknownCommand(map[string]any{"Command": "Unknown"}))
	assert.True(t, isUnknownCommand(map[string]any{"Command": "unknown"}))
	assert.False(t, isUnknownCommand(map[string]any{"Command": "Done"}))
	assert.False(t, isUnknownCommand(map[string]any{"POWER": "ON"}))
	assert.False(t, isUnknownCommand(map[string]any{"Command": 7.0}))
}

func TestSendCommand_WrapsWithoutLosingSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Credentials{}, logger.Nop())
	_, err := c.SendCommand(context.Background(), hostOf(srv), CmdStatusAll, time.Second)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Contains(t, err.Error(), "502")
}
