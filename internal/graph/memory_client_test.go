package graph

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryClient_ReplaysInOrder(t *testing.T) {
	mem := NewMemoryClient()
	mem.PushReadRecords(Record{"n": int64(1)})
	mem.PushReadRecords(Record{"n": int64(2)})

	ctx := context.Background()
	first, _ := mem.ExecuteRead(ctx, "RETURN 1 AS n", nil)
	second, _ := mem.ExecuteRead(ctx, "RETURN 2 AS n", map[string]any{"x": 1})
	third, _ := mem.ExecuteRead(ctx, "RETURN 3 AS n", nil)

	if first.First()["n"] != int64(1) || second.First()["n"] != int64(2) {
		t.Fatalf("results replayed out of order: %+v %+v", first, second)
	}
	if third.First() != nil {
		t.Fatalf("expected empty result once the queue is drained, got %+v", third)
	}
	if got := len(mem.ReadCalls()); got != 3 {
		t.Fatalf("expected 3 recorded reads, got %d", got)
	}
}

func TestMemoryClient_BatchStopsOnError(t *testing.T) {
	mem := NewMemoryClient()
	boom := errors.New("boom")
	mem.PushWriteResult(Result{})
	mem.PushWriteError(boom)

	_, err := mem.ExecuteWriteBatch(context.Background(), []Statement{
		{Query: "A"}, {Query: "B"}, {Query: "C"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := len(mem.WriteCalls()); got != 2 {
		t.Fatalf("expected the batch to stop after the failing statement, got %d calls", got)
	}
}

func TestMemoryClient_ParamsAreCopied(t *testing.T) {
	mem := NewMemoryClient()
	params := map[string]any{"userId": "U-1"}
	_, _ = mem.ExecuteWrite(context.Background(), "MERGE", params)
	params["userId"] = "changed"

	if mem.WriteCalls()[0].Params["userId"] != "U-1" {
		t.Fatal("recorded params must not alias the caller's map")
	}
}
