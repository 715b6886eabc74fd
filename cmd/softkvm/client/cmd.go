package client

import (
	"context"
	"flag"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/softkvm/softkvm/cmd/softkvm/subcmd"
	"github.com/softkvm/softkvm/internal/client"
	"github.com/softkvm/softkvm/internal/input"
	"github.com/softkvm/softkvm/internal/state"
	"github.com/softkvm/softkvm/wire"
)

var Mod = subcmd.Mod{Name: "start", Main: Main}
var PingMod = subcmd.Mod{Name: "ping", Main: PingMain}

// Main runs the capture side: watch devices, toggle relay on the hotkey,
// stream events to the server.
func Main(ctx context.Context, args []string) error {
	g := state.MustGetGlobal(ctx)

	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	flagToggleKey := fs.String("toggle-key", "", "relay toggle, Linux key code, overrides config")
	if err := fs.Parse(args); err != nil {
		return errors.Trace(err)
	}

	toggleKey := input.DefaultToggleKey
	keySpec := g.Config.Client.ToggleKey
	if *flagToggleKey != "" {
		keySpec = *flagToggleKey
	}
	if keySpec != "" {
		k, err := input.ParseKeyCode(keySpec)
		if err != nil {
			return errors.Annotate(err, "toggle-key")
		}
		toggleKey = k
	}
	g.Log.Infof("toggle key code=%d (%s)", toggleKey, input.KeyName(toggleKey))

	capture := input.NewCapture(g.Alive, g.Log, g.Config.Client.DeviceDir)
	defer capture.Close()
	if err := capture.Start(); err != nil {
		return errors.Annotate(err, "capture")
	}

	transport := client.NewTransport(g.Alive, g.Log, g.Config.Addr())
	if err := transport.Start(); err != nil {
		return errors.Trace(err)
	}

	relay := input.NewRelay(g.Log, toggleKey, capture)
	out := make(chan *wire.Packet)
	if g.Alive.Add(1) {
		go func() {
			defer g.Alive.Done()
			for {
				select {
				case p := <-out:
					transport.Send(p)
				case <-g.Alive.StopChan():
					return
				}
			}
		}()
	}

	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("client running, press %s to toggle relay", input.KeyName(toggleKey))
	relay.Run(capture.Events(), out, g.Alive.StopChan())

	// close device files first: reader pumps blocked in a device read
	// only exit when their fd goes away
	capture.Close()
	g.Alive.Wait()
	return nil
}

// PingMain checks server reachability: softkvm ping [host:port]
func PingMain(ctx context.Context, args []string) error {
	g := state.MustGetGlobal(ctx)

	addr := g.Config.Addr()
	if len(args) > 0 && args[0] != "" {
		addr = args[0]
	}
	return errors.Annotate(client.Ping(g.Log, addr, 5*time.Second), "ping")
}
