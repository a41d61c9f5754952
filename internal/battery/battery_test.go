package battery

import (
	"context"
	"testing"

	"hubpanel/internal/config"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name                 string
		high, low, pct, ctrl byte
		wantMv, wantPct      int
		wantCharging         bool
	}{
		{"nominal", 0x0f, 0xa0, 87, 0x00, 4000, 87, false},
		{"charging", 0x10, 0x04, 100, 0x80, 4100, 100, true},
		{"percent clamped", 0x0e, 0x10, 0xff, 0x7f, 3600, 100, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := decode(tc.high, tc.low, tc.pct, tc.ctrl)
			if !b.Present || b.VoltageMv != tc.wantMv || b.Percent != tc.wantPct || b.Charging != tc.wantCharging {
				t.Errorf("decode = %+v", b)
			}
		})
	}
}

func TestMockReaderStaysInRange(t *testing.T) {
	r := NewMockReader(42)
	sawCharging := false
	for i := 0; i < 1000; i++ {
		b, err := r.Read(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if b.Percent < 0 || b.Percent > 100 {
			t.Fatalf("percent %d out of range", b.Percent)
		}
		sawCharging = sawCharging || b.Charging
	}
	if !sawCharging {
		t.Error("simulated cell never started charging")
	}
}

func TestOpenDisabled(t *testing.T) {
	if r := Open(context.Background(), config.BatteryConfig{Enabled: false}); r != nil {
		t.Errorf("disabled gauge returned %T", r)
	}
}
