package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = old })

	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("Get().Version = %q", got)
	}
	if got := UserAgent(); got != "augment/v9.9.9" {
		t.Errorf("UserAgent() = %q", got)
	}
	if !strings.Contains(Template(), "v9.9.9") {
		t.Errorf("Template() = %q", Template())
	}
}
