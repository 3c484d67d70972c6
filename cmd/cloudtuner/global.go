package main

import (
	"context"
	"io"
	"os"

	"github.com/whoisnian/glb/ansi"
	"github.com/whoisnian/glb/config"
	"github.com/whoisnian/glb/logger"
)

var CFG struct {
	Debug     bool   `flag:"d,false,Enable debug output"`
	Device    string `flag:"dev,,Serial device to use, first USB port if empty"`
	Baud      int    `flag:"baud,9600,Serial baudrate"`
	List      bool   `flag:"list,false,List serial ports and exit"`
	Profile   string `flag:"profile,classic,Parameter set, classic or full"`
	Params    string `flag:"params,,Comma separated tuning parameter names, overrides the profile"`
	Telemetry string `flag:"telemetry,,Comma separated STATUS value names, overrides the profile"`
	Poll      int    `flag:"poll,10,Milliseconds between serial polls"`
	Scale     string `flag:"scale,1,Telemetry value that fills a bar"`
	Rows      int    `flag:"rows,8,Bar height in rows"`
	History   int    `flag:"history,200,Samples kept per telemetry value for stats"`
	HTTP      string `flag:"http,,Serve a read-only web mirror on this address, disabled if empty"`
	Log       string `flag:"log,cloudtuner.log,Log file, '-' for stderr"`
}

var LOG *logger.Logger

// setupConfigAndLogger parses flags and opens the log destination. The
// terminal belongs to the UI, so logs go to a file unless -log - is given.
func setupConfigAndLogger(_ context.Context) io.Closer {
	_, err := config.FromCommandLine(&CFG)
	if err != nil {
		panic(err)
	}
	level := logger.LevelInfo
	if CFG.Debug {
		level = logger.LevelDebug
	}

	var out *os.File = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if CFG.Log != "-" && !CFG.List {
		f, err := os.OpenFile(CFG.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(err)
		}
		out, closer = f, f
	}
	LOG = logger.New(logger.NewNanoHandler(out, logger.Options{
		Level:     level,
		Colorful:  ansi.IsSupported(out.Fd()),
		AddSource: CFG.Debug,
	}))
	return closer
}
