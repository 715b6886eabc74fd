package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/alive/v2"

	cmd_client "github.com/softkvm/softkvm/cmd/softkvm/client"
	cmd_server "github.com/softkvm/softkvm/cmd/softkvm/server"
	"github.com/softkvm/softkvm/cmd/softkvm/subcmd"
	"github.com/softkvm/softkvm/internal/state"
	"github.com/softkvm/softkvm/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

var modules = []subcmd.Mod{
	cmd_client.Mod,
	cmd_client.PingMod,
	cmd_server.Mod,
}

func main() {
	flagConfig := flag.String("config", "softkvm.hcl", "")
	flagDebug := flag.Bool("debug", false, "")
	flagVersion := flag.Bool("version", false, "")
	flag.Parse()

	if *flagVersion {
		fmt.Printf("softkvm %s\n", BuildVersion)
		return
	}

	logLevel := log2.LInfo
	if *flagDebug {
		logLevel = log2.LDebug
	}
	logger := log2.NewStderr(logLevel)
	if subcmd.SdNotify("start") {
		// under systemd assume journal logging, remove timestamp
		logger.SetFlags(log2.LServiceFlags)
	} else if isatty.IsTerminal(os.Stderr.Fd()) {
		logger.SetFlags(log2.LInteractiveFlags)
	}
	logger.Debugf("hello build=%s", BuildVersion)

	mod, err := subcmd.Parse(flag.Arg(0), modules)
	if err != nil {
		logger.Fatalf("command line: %v\nusage: softkvm [flags] start|server|ping", err)
	}

	a := alive.NewAlive()
	g := &state.Global{
		Alive:        a,
		BuildVersion: BuildVersion,
		Config:       state.MustReadConfig(logger, *flagConfig),
		Log:          logger,
	}
	ctx := state.NewContext(context.Background(), g)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Infof("signal %v, stopping", sig)
		a.Stop()
	}()

	logger.Debugf("command=%s config=%s", mod.Name, *flagConfig)
	if err := mod.Main(ctx, flag.Args()[1:]); err != nil {
		// use stdlib log to be sure the error reaches stderr even if
		// the logger was misconfigured
		log.Fatal(errors.ErrorStack(err))
	}
	a.Stop()
	a.Wait()
}
