package state

import (
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"github.com/softkvm/softkvm/log2"
)

const (
	DefaultHost      = "0.0.0.0"
	DefaultPort      = 3100
	DefaultDeviceDir = "/dev/input"
)

type Config struct {
	Network struct {
		Host string `hcl:"host"`
		Port int    `hcl:"port"`
	} `hcl:"network"`

	Client struct {
		// Linux key code, "29" decimal or "0x1d" hex. Empty means left ctrl.
		ToggleKey string `hcl:"toggle_key"`
		DeviceDir string `hcl:"device_dir"`
	} `hcl:"client"`
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Network.Host, strconv.Itoa(c.Network.Port))
}

func (c *Config) applyDefaults() {
	if c.Network.Host == "" {
		c.Network.Host = DefaultHost
	}
	if c.Network.Port == 0 {
		c.Network.Port = DefaultPort
	}
	if c.Client.DeviceDir == "" {
		c.Client.DeviceDir = DefaultDeviceDir
	}
}

const defaultConfigText = `// softkvm configuration
network {
  host = "0.0.0.0"
  port = 3100
}

client {
  // relay toggle, Linux key code; 0x1d is left ctrl
  toggle_key = "0x1d"
  device_dir = "/dev/input"
}
`

// ReadConfig loads the HCL config at path. A missing file is not an
// error: the default config is written there for the operator to edit and
// the defaults are returned.
func ReadConfig(log *log2.Log, path string) (*Config, error) {
	c := &Config{}
	b, err := ioutil.ReadFile(path)
	switch {
	case err == nil:
		if err := hcl.Unmarshal(b, c); err != nil {
			return nil, errors.Annotatef(err, "config=%s parse", path)
		}
	case os.IsNotExist(err):
		log.Infof("config=%s does not exist, writing defaults", path)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Annotatef(err, "config=%s mkdir", path)
			}
		}
		if err := ioutil.WriteFile(path, []byte(defaultConfigText), 0644); err != nil {
			return nil, errors.Annotatef(err, "config=%s write default", path)
		}
	default:
		return nil, errors.Annotatef(err, "config=%s read", path)
	}
	c.applyDefaults()
	return c, nil
}

func MustReadConfig(log *log2.Log, path string) *Config {
	c, err := ReadConfig(log, path)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
