package mqttgps

import (
	"errors"
	"testing"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/locator"
)

func TestPlateFromTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"frota/PIA-2C41/gps", "PIA-2C41"},
		{"frota/gps", ""},
		{"frota/PIA-2C41/gps/extra", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := plateFromTopic(tc.topic); got != tc.want {
			t.Errorf("plateFromTopic(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}

func TestReadPositionStaleFix(t *testing.T) {
	c := NewClient(&config.LocatorConfig{MaxAge: time.Minute})

	if _, err := c.ReadPosition("PIA-2C41"); !errors.Is(err, locator.ErrNoFix) {
		t.Fatalf("empty cache: %v", err)
	}

	c.fixes["PIA-2C41"] = locator.Position{Lat: -4.4247, Lon: -41.4586, At: time.Now()}
	pos, err := c.ReadPosition("PIA-2C41")
	if err != nil {
		t.Fatalf("fresh fix: %v", err)
	}
	if pos.Lat != -4.4247 {
		t.Fatalf("lat = %f", pos.Lat)
	}

	c.fixes["PIA-2C41"] = locator.Position{Lat: -4.4247, Lon: -41.4586, At: time.Now().Add(-2 * time.Minute)}
	if _, err := c.ReadPosition("PIA-2C41"); !errors.Is(err, locator.ErrNoFix) {
		t.Fatalf("stale fix should be ErrNoFix, got %v", err)
	}
}
