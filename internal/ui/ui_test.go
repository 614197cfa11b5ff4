package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░ 1/2", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░ 0/1", ProgressBar(0, 0, 1))
	assert.Equal(t, "█████ 9/3", ProgressBar(9, 3, 5))
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")

	SetTheme("MONO")
	assert.Equal(t, "mono", Current().Name)
	assert.Equal(t, "[x]", Current().BoxChecked)

	SetTheme("neon")
	assert.Equal(t, "◼", Current().BoxChecked)

	SetTheme("whatever")
	assert.Equal(t, "classic", Current().Name)
}

func TestOKAndFail(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "ok added\nerror: nope\n", buf.String())
}

func TestPanelFramesContent(t *testing.T) {
	SetTheme("mono")
	defer SetTheme("classic")

	out := Panel("hi")
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "hi")
}
