package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainLogLines(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewConsole(WithPlain(true), WithWriter(buf))

	c.LogInfo("AURORA_CLUSTER: %s", "aurora-prod")
	c.LogWarning("[%s] stale", "db-1")
	c.LogError("boom")
	c.LogSuccess("done")

	assert.Equal(t, "INFO: AURORA_CLUSTER: aurora-prod\nWARN: [db-1] stale\nERROR: boom\nOK: done\n", buf.String())
	assert.True(t, c.Plain())
}

func TestPlainStatusAndProgressAreQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewConsole(WithPlain(true), WithWriter(buf))

	status := c.Status("Listing instances")
	status.Update("still listing")
	status.Stop()

	progress := c.ProgressWithTotal(3)
	progress.Increment()
	progress.Stop()

	assert.Equal(t, "INFO: Listing instances\n", buf.String())
}

func TestConcurrentLogsDoNotInterleave(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewConsole(WithPlain(true), WithWriter(buf))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.LogInfo("instance %d processed", i)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "INFO: instance "), line)
	}
}

func TestTableRender(t *testing.T) {
	c := NewConsole(WithPlain(true), WithWriter(&bytes.Buffer{}))
	table := c.CreateTable()
	table.AddColumn("Instance")
	table.AddColumn("Files")
	table.AddRow("db-1", 42)

	out := table.Render()
	assert.Contains(t, out, "Instance")
	assert.Contains(t, out, "db-1")
	assert.Contains(t, out, "42")
}
