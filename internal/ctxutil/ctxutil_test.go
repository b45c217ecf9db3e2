package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeoutZeroMeansNoDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("нулевой таймаут не должен ставить дедлайн")
	}
}

func TestWithDBTimeoutSetsDeadline(t *testing.T) {
	ctx, cancel := WithDBTimeout(context.Background())
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("ожидали дедлайн")
	}
	if remain := time.Until(dl); remain > DefaultDBTimeout {
		t.Fatalf("дедлайн дальше стандартного таймаута: %v", remain)
	}
}

func TestWithAPITimeoutRespectsShorterParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ctx, cancel2 := WithAPITimeout(parent)
	defer cancel2()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("ожидали дедлайн")
	}
	if remain := time.Until(dl); remain > time.Second {
		t.Fatalf("дочерний дедлайн дальше родительского: %v", remain)
	}
}

func TestChatIDRoundTrip(t *testing.T) {
	ctx := WithChatID(context.Background(), 42)
	if got, ok := ChatID(ctx); !ok || got != 42 {
		t.Fatalf("chat_id: ожидали 42, получили %d (ok=%v)", got, ok)
	}
	if _, ok := ChatID(context.Background()); ok {
		t.Fatal("пустой контекст: chat_id быть не должно")
	}
}

func TestOpRoundTrip(t *testing.T) {
	ctx := WithOp(context.Background(), "att")
	if got, ok := Op(ctx); !ok || got != "att" {
		t.Fatalf("op: ожидали att, получили %q (ok=%v)", got, ok)
	}
}
