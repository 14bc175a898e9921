package transport

import (
	"context"
	"testing"
	"time"
)

func TestLoopbackUnicastDelivery(t *testing.T) {
	mesh := NewLoopbackMesh("alice", "bob", "carol")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := mesh["alice"].Broadcast(ctx, []byte("hello"), UnicastHint("bob")); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	got, err := mesh["bob"].Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if got.SourceID != "alice" || string(got.Packet) != "hello" {
		t.Fatalf("unexpected delivery: %+v", got)
	}

	// carol should not have received it.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer shortCancel()
	if _, err := mesh["carol"].Receive(shortCtx); err == nil {
		t.Fatalf("expected carol's receive to time out, got a delivery")
	}
}

func TestLoopbackBroadcastToAllNeighbors(t *testing.T) {
	mesh := NewLoopbackMesh("alice", "bob", "carol")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := mesh["alice"].Broadcast(ctx, []byte("ping"), BroadcastHint()); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for _, id := range []string{"bob", "carol"} {
		got, err := mesh[id].Receive(ctx)
		if err != nil {
			t.Fatalf("%s receive: %v", id, err)
		}
		if string(got.Packet) != "ping" {
			t.Fatalf("%s got unexpected packet: %s", id, got.Packet)
		}
	}
}

func TestLoopbackBroadcastUnknownUnicastTargetErrors(t *testing.T) {
	mesh := NewLoopbackMesh("alice", "bob")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := mesh["alice"].Broadcast(ctx, []byte("x"), UnicastHint("nobody")); err == nil {
		t.Fatalf("expected error for unknown unicast target")
	}
}

func TestLoopbackReceiveCancellation(t *testing.T) {
	mesh := NewLoopbackMesh("alice", "bob")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mesh["bob"].Receive(ctx); err == nil {
		t.Fatalf("expected error from canceled context")
	}
}
