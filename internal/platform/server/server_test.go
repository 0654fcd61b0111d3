package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	srv := New("127.0.0.1:0", "127.0.0.1:0", http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_RunFailsOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := New("invalid-address", "", http.NotFoundHandler())
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
