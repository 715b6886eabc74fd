package state_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softkvm/softkvm/internal/state"
	"github.com/softkvm/softkvm/log2"
)

func TestReadConfigDefaultsWhenMissing(t *testing.T) {
	t.Parallel()

	dir, err := ioutil.TempDir("", "softkvm-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "sub", "softkvm.hcl")

	log := log2.NewTest(t, log2.LDebug)
	c, err := state.ReadConfig(log, path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3100", c.Addr())
	assert.Equal(t, "/dev/input", c.Client.DeviceDir)
	assert.Equal(t, "", c.Client.ToggleKey)

	// the default file must have been written and must parse back
	_, err = os.Stat(path)
	assert.NoError(t, err)
	c2, err := state.ReadConfig(log, path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3100", c2.Addr())
	assert.Equal(t, "0x1d", c2.Client.ToggleKey)
}

func TestReadConfigParse(t *testing.T) {
	t.Parallel()

	dir, err := ioutil.TempDir("", "softkvm-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "softkvm.hcl")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
network {
  host = "192.168.1.5"
  port = 4200
}
client {
  toggle_key = "0x38"
  device_dir = "/dev/input-test"
}
`), 0644))

	log := log2.NewTest(t, log2.LDebug)
	c, err := state.ReadConfig(log, path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5:4200", c.Addr())
	assert.Equal(t, "0x38", c.Client.ToggleKey)
	assert.Equal(t, "/dev/input-test", c.Client.DeviceDir)
}

func TestReadConfigPartialGetsDefaults(t *testing.T) {
	t.Parallel()

	dir, err := ioutil.TempDir("", "softkvm-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "softkvm.hcl")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
network {
  host = "10.0.0.2"
}
`), 0644))

	log := log2.NewTest(t, log2.LDebug)
	c, err := state.ReadConfig(log, path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:3100", c.Addr())
	assert.Equal(t, "/dev/input", c.Client.DeviceDir)
}

func TestReadConfigInvalid(t *testing.T) {
	t.Parallel()

	dir, err := ioutil.TempDir("", "softkvm-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "softkvm.hcl")
	require.NoError(t, ioutil.WriteFile(path, []byte(`network { host = `), 0644))

	log := log2.NewTest(t, log2.LDebug)
	_, err = state.ReadConfig(log, path)
	assert.Error(t, err)
}
