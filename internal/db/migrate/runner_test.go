package migrate

import (
	"strings"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", "up")
	if err == nil {
		t.Fatal("Run with empty DSN: expected error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %q, want mention of DATABASE_URL", err)
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "sideways", "UP", "Down"} {
		err := Run("postgres://localhost/app", dir)
		if err == nil {
			t.Errorf("Run(direction=%q): expected error", dir)
			continue
		}
		if !strings.Contains(err.Error(), "direction") {
			t.Errorf("Run(direction=%q) = %q, want direction error", dir, err)
		}
	}
}

func TestRun_InvalidDSN(t *testing.T) {
	err := Run("not-a-dsn", "up")
	if err == nil {
		t.Fatal("Run with invalid DSN: expected error")
	}
}
