package server

import (
	"context"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/softkvm/softkvm/cmd/softkvm/subcmd"
	"github.com/softkvm/softkvm/internal/replay"
	"github.com/softkvm/softkvm/internal/server"
	"github.com/softkvm/softkvm/internal/state"
)

var Mod = subcmd.Mod{Name: "server", Main: Main}

// Main runs the replay side: listen for clients and inject their events
// into the local session.
func Main(ctx context.Context, args []string) error {
	g := state.MustGetGlobal(ctx)

	sink := replay.NewSink(g.Log, replay.NewRobotInjector())
	srv := server.NewServer(g.Log, sink)
	if err := srv.Listen(g.Config.Addr()); err != nil {
		return errors.Annotate(err, "bind")
	}

	subcmd.SdNotify(daemon.SdNotifyReady)
	<-g.Alive.StopChan()
	err := srv.Close()
	g.Alive.Wait()
	return errors.Trace(err)
}
