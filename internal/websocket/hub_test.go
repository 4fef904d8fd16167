package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/service"
	catalogws "restaurant-catalog/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newServer(t *testing.T) (*catalogws.Hub, *auth.TokenManager, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := catalogws.NewHub()
	go hub.Run(ctx)

	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { catalogws.ServeWs(hub, c, tokens) })

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, tokens, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestServeWsRejectsBadTokens(t *testing.T) {
	_, _, url := newServer(t)

	for _, q := range []string{"", "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+q, nil)
		if err == nil {
			t.Fatalf("dial %q should fail", q)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("dial %q: expected 401, got %+v", q, resp)
		}
	}
}

func TestHubBroadcastsCatalogEvents(t *testing.T) {
	hub, tokens, url := newServer(t)

	token, err := tokens.Issue(auth.RestaurantPrincipal{RestaurantID: 4, Subject: "r@x.test"})
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(service.CatalogEvent{Type: service.EventProductCreated, RestaurantID: 4, ProductID: 9})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got service.CatalogEvent
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	if got.Type != service.EventProductCreated || got.ProductID != 9 {
		t.Fatalf("unexpected event %+v", got)
	}
}
