package infra

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestHTTPServerUsesConfig(t *testing.T) {
	cfg := &Config{Port: "0", HTTPReadTimeout: 3 * time.Second, HTTPWriteTimeout: 4 * time.Second, HTTPIdleTimeout: 5 * time.Second}
	s := NewHTTPServer(cfg, http.NotFoundHandler())
	if s.Addr() != ":0" {
		t.Fatalf("Addr = %q", s.Addr())
	}
	if s.server.ReadTimeout != 3*time.Second || s.server.WriteTimeout != 4*time.Second || s.server.IdleTimeout != 5*time.Second {
		t.Fatalf("timeouts not applied: %+v", s.server)
	}
}

func TestHTTPServerStartReturnsNilAfterShutdown(t *testing.T) {
	s := NewHTTPServer(&Config{Port: "0"}, http.NotFoundHandler())
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after Shutdown")
	}
}
