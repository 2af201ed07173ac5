package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmd(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = orig })

	buf := &bytes.Buffer{}
	cmd := Cmd()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "esconfig 1.2.3\n", buf.String())
}

func TestCmd_RejectsArgs(t *testing.T) {
	cmd := Cmd()
	assert.Error(t, cmd.Args(cmd, []string{"extra"}))
}
