package requestctx

import (
	"context"
	"testing"
)

func TestLogAttrs(t *testing.T) {
	if attrs := LogAttrs(context.Background()); len(attrs) != 0 {
		t.Fatalf("expected no attrs on empty context, got %v", attrs)
	}

	ctx := WithTool(WithRequestID(context.Background(), "req-1"), "manage_holidays")
	attrs := LogAttrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("expected two attrs, got %v", attrs)
	}
	if attrs[0].Value.String() != "req-1" || attrs[1].Value.String() != "manage_holidays" {
		t.Fatalf("unexpected attrs %v", attrs)
	}
}
