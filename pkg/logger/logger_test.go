package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	Configure("json", &buf)
	t.Cleanup(func() { Configure("console", os.Stdout) })

	l := Component("artifact_service")
	l.Info().Str("key", "model.pkl").Msg("uploading file")

	assert.Contains(t, buf.String(), `"component":"artifact_service"`)
	assert.Contains(t, buf.String(), `"key":"model.pkl"`)
}
