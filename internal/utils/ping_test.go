package utils

import (
	"net"
	"testing"
	"time"
)

func TestPingService(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer listener.Close()

	url := "http://" + listener.Addr().String()
	if err := PingService(url, time.Second); err != nil {
		t.Errorf("Expected reachable service, got %v", err)
	}
}

func TestPingServiceUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	if err := PingService("http://"+addr, 500*time.Millisecond); err == nil {
		t.Error("Expected an error for a closed port")
	}
}

func TestPingServiceInvalidURL(t *testing.T) {
	if err := PingService("not a url", time.Second); err == nil {
		t.Error("Expected an error for a URL without host")
	}
}
