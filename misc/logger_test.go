package misc

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLog(&buf, "[test] ", log.LstdFlags)
	logger.Printf("hello")

	// Stdlib time flags are stripped; only the short timestamp remains.
	assert.Regexp(t, `^\d{8}-\d{6} \[test\] hello\n$`, buf.String())
}

func TestNewLogMilliFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogMilli(&buf, "[test] ", log.Lmsgprefix)
	logger.Printf("hello")

	assert.Regexp(t, `^\d{8}-\d{6}\.\d{3} \[test\] hello\n$`, buf.String())
}
