package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeChecker struct{ err error }

func (f *fakeChecker) HealthCheck(ctx context.Context) error { return f.err }

func TestCheck_IndexOnly_Healthy(t *testing.T) {
	svc := New(&fakePinger{}, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected %s, got %s", Healthy, report.Status)
	}
	if report.Checks["index"] != CheckOK {
		t.Errorf("expected index ok, got %s", report.Checks["index"])
	}
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("embedding check must be absent when no provider is configured")
	}
}

func TestCheck_IndexDown_Degraded(t *testing.T) {
	svc := New(&fakePinger{err: errors.New("connection refused")}, nil)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected %s, got %s", Degraded, report.Status)
	}
	if report.Checks["index"] != CheckError {
		t.Errorf("expected index error, got %s", report.Checks["index"])
	}
}

func TestCheck_WithEmbedding_Healthy(t *testing.T) {
	svc := New(&fakePinger{}, &fakeChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected %s, got %s", Healthy, report.Status)
	}
	if report.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding ok, got %s", report.Checks["embedding"])
	}
}

func TestCheck_EmbeddingDown_Degraded(t *testing.T) {
	svc := New(&fakePinger{}, &fakeChecker{err: errors.New("401")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected %s, got %s", Degraded, report.Status)
	}
	if report.Checks["index"] != CheckOK {
		t.Errorf("index must still report ok, got %s", report.Checks["index"])
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding error, got %s", report.Checks["embedding"])
	}
}
