package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init() // second call must not re-register
	if IRCMessagesRelayed == nil || RelayDropped == nil || DirectorySizeGauge == nil {
		t.Fatalf("metrics not initialized")
	}
}

func TestNilSafeHelpers(t *testing.T) {
	// These must not panic even when counters are nil (packages under test
	// often skip Init).
	Count(nil)
	CountDrop(DropReasonNoUser)
	SetDirectorySize(3)
	SetIRCConnected(true)
	SetIRCConnected(false)
}

func TestTimeFunc(t *testing.T) {
	d := TimeFunc(nil, func() { time.Sleep(5 * time.Millisecond) })
	if d < 5*time.Millisecond {
		t.Errorf("duration %v too short", d)
	}
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()
	if GetCorrelation(ctx) != "" {
		t.Errorf("expected empty correlation on fresh context")
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("GetCorrelation = %q", got)
	}
	if LoggerWithCorr(ctx) == nil {
		t.Errorf("LoggerWithCorr returned nil")
	}
}
