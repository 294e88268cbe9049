package booking

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHubPushesAvailability(t *testing.T) {
	f := newFixture()
	hub := NewHub(f.svc)
	f.svc.Events = hub
	defer hub.Close()

	router := httprouter.New()
	router.GET("/api/ws/availability/:date", hub.HandleWS)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/availability/" + monday
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.subscriberCount(monday) == 1 }, time.Second, 5*time.Millisecond)

	_, err = f.svc.Create(context.Background(), request(monday, []string{"09:00-09:30"}, RequestSelection{Kart: "adult", Quantity: 1}))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	body := string(msg)
	assert.Equal(t, "availability", gjson.Get(body, "type").String())
	assert.Equal(t, monday, gjson.Get(body, "date").String())
	assert.Equal(t, int64(1), gjson.Get(body, "timeslots.0.kartAvailability.0.available").Int())
}

func TestHubIgnoresUnwatchedDates(t *testing.T) {
	f := newFixture()
	hub := NewHub(f.svc)
	f.svc.Events = hub

	_, err := f.svc.Create(context.Background(), request(monday, []string{"09:00-09:30"}, RequestSelection{Kart: "adult", Quantity: 1}))
	require.NoError(t, err)
	assert.Zero(t, hub.subscriberCount(monday))
}

func TestHubRejectsBadDate(t *testing.T) {
	hub := NewHub(newFixture().svc)
	router := httprouter.New()
	router.GET("/api/ws/availability/:date", hub.HandleWS)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ws/availability/tomorrow", nil))
	assert.Equal(t, 400, rec.Code)
}
