package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(&buf)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("careful")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO:  shown 2")
	assert.Contains(t, out, "WARN:  careful")
}

func TestVerboseLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewVerboseLogger(&buf).WithPrefix("[rank 3] ")

	l.Debugf("opening %s", "a.h5")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "[rank 3] DEBUG: opening a.h5"), line)
	// timestamp comes first and is UTC
	assert.Contains(t, strings.Fields(line)[0], "Z")
}

func TestBufferLogger(t *testing.T) {
	b := NewBufferLogger()
	b.WithPrefix("h5io: ").Warnf("%d rows excluded", 1)
	assert.Equal(t, "h5io: WARN:  1 rows excluded\n", b.String())
}

func TestNopLogger(t *testing.T) {
	NopLogger.Errorf("nothing")
	assert.Equal(t, NopLogger, NopLogger.WithPrefix("x"))
}
