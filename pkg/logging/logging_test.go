package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false, "json")
	logger.Debug().Msg("hidden")
	logger.Info().Str("service", "City Retrieval").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged without debug mode: %s", out)
	}
	if !strings.Contains(out, `"service":"City Retrieval"`) || !strings.Contains(out, `"message":"visible"`) {
		t.Errorf("unexpected output: %s", out)
	}

	buf.Reset()
	logger = New(&buf, true, "json")
	logger.Debug().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug message missing: %s", buf.String())
	}
}
