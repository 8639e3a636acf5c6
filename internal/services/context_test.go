package services_test

import (
	"context"
	"testing"

	"inkwell/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTaskID(ctx, "task_ab12cd34ef56")
	ctx = services.WithStep(ctx, "cover")
	ctx = services.WithAccountID(ctx, "daily-wellness")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.TaskIDFromContext(ctx); !ok || id != "task_ab12cd34ef56" {
		t.Fatalf("unexpected task id: %v %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "cover" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
	if acct, ok := services.AccountIDFromContext(ctx); !ok || acct != "daily-wellness" {
		t.Fatalf("unexpected account: %v %v", acct, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStepBlankPreservesContext(t *testing.T) {
	ctx := services.WithStep(context.Background(), "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step value")
	}
}
