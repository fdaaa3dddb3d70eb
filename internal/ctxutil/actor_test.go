package ctxutil

import (
	"context"
	"testing"
)

func TestActorFromContext(t *testing.T) {
	ctx := context.Background()
	if got := ActorFromContext(ctx); got != "" {
		t.Errorf("ActorFromContext(empty) = %q", got)
	}
	if got := ActorFromContext(WithActor(ctx, "alice")); got != "alice" {
		t.Errorf("ActorFromContext = %q, want alice", got)
	}
	if got := ActorFromContext(context.WithValue(ctx, ActorKey{}, 42)); got != "" {
		t.Errorf("non-string actor should be ignored, got %q", got)
	}
}
