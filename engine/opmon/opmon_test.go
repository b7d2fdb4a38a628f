package opmon

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bmizerany/assert"
)

func TestOperation(t *testing.T) {
	Take()
	for i := 0; i < 3; i++ {
		op := StartOperation("storage.save")
		op.Finish(time.Hour)
	}
	StartOperation("storage.load").Finish(time.Hour)

	stats := Take()
	assert.Equal(t, 2, len(stats))
	assert.Equal(t, "storage.load", stats[0].Name)
	assert.Equal(t, uint64(1), stats[0].Count)
	assert.Equal(t, "storage.save", stats[1].Name)
	assert.Equal(t, uint64(3), stats[1].Count)
	assert.T(t, stats[1].MaxDuration <= stats[1].TotalDuration, stats[1])
	assert.Equal(t, 0, len(Take()))
}

func TestDump(t *testing.T) {
	Take()
	StartOperation("storage.exists").Finish(0)
	var buf bytes.Buffer
	Dump(&buf)
	assert.T(t, strings.Contains(buf.String(), "storage.exists"), buf.String())
	assert.Equal(t, time.Duration(0), OpStats{}.Avg())
}
