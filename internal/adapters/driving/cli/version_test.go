package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := version
	version = v
	t.Cleanup(func() { version = orig })
}

func TestVersionCmd_SkipsServices(t *testing.T) {
	assert.True(t, hasAnnotation(versionCmd, skipServices))
}

func TestVersionCmd_Full(t *testing.T) {
	withVersion(t, "1.2.0")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "markscan version 1.2.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_DevByDefault(t *testing.T) {
	withVersion(t, "dev")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "markscan version dev")
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.2.0")
	defer resetFlags(rootCmd)

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0\n", out)
}
