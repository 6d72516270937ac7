package cronrunner

import (
	"context"
	"testing"
)

func TestAdd_RejectsBadSpec(t *testing.T) {
	r := New(nil, context.Background())
	if _, err := r.Add("ingest", "every now and then", func(context.Context) {}); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := r.Add("ingest", "0 0 */4 * * *", func(context.Context) {}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := r.Len(); got != 1 {
		t.Fatalf("entries=%d want=1", got)
	}
}
