// cloudtuner: terminal console to view and edit the tuning parameters of a
// cloud lighting controller over its serial link, with live telemetry bars.
//
// Run:
//
//	cloudtuner -dev /dev/ttyUSB0
//	cloudtuner -profile full -http 127.0.0.1:8080
//	cloudtuner -list
//
// Keys:
//
//	tab / shift+tab  move between fields
//	enter            send every field (NEW_TUNING), then REQUEST_TUNING
//	ctrl+r, click    REQUEST_TUNING
//	ctrl+s           SAVE_TUNING
//	ctrl+o           RESTORE_TUNING
//	esc, ctrl+c      quit
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cloudtuner/internal/link"
	"cloudtuner/internal/mirror"
	"cloudtuner/internal/profile"
	"cloudtuner/internal/tuner"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logFile := setupConfigAndLogger(ctx)
	defer logFile.Close()
	LOG.Debugf(ctx, "use config: %+v", CFG)

	ports := link.ListPorts()
	if CFG.List {
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}
	for _, p := range ports {
		LOG.Infof(ctx, "found port %s", p)
	}

	prof, err := profile.Lookup(CFG.Profile)
	if err != nil {
		fatalf(ctx, "%v", err)
	}
	prof = prof.Override(CFG.Params, CFG.Telemetry)
	scale, err := strconv.ParseFloat(CFG.Scale, 64)
	if err != nil || scale <= 0 {
		fatalf(ctx, "invalid -scale %q", CFG.Scale)
	}

	dev, err := link.SelectPort(CFG.Device, ports)
	if err != nil {
		fatalf(ctx, "%v", err)
	}
	l, err := link.Open(ctx, link.Config{Name: dev, Baud: CFG.Baud}, LOG)
	if err != nil {
		fatalf(ctx, "failed to open serial port: %v", err)
	}
	defer l.Close()
	LOG.Infof(ctx, "opened %s @ %d, profile %s", dev, CFG.Baud, prof.Name)

	opts := tuner.Options{
		Port:      dev,
		Profile:   prof,
		Poll:      time.Duration(CFG.Poll) * time.Millisecond,
		FullScale: scale,
		Rows:      CFG.Rows,
		History:   CFG.History,
		Log:       LOG,
	}
	if CFG.HTTP != "" {
		ln, err := net.Listen("tcp", CFG.HTTP)
		if err != nil {
			fatalf(ctx, "failed to start mirror: %v", err)
		}
		srv := mirror.New(LOG)
		opts.Mirror = srv
		go func() {
			if err := srv.Serve(ctx, ln); err != nil {
				LOG.Errorf(ctx, "mirror stopped: %v", err)
			}
		}()
	}

	p := tea.NewProgram(tuner.New(l, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fatalf(ctx, "ui: %v", err)
	}
}

// fatalf reports on stderr as well, since the log may be a file.
func fatalf(ctx context.Context, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cloudtuner: "+format+"\n", args...)
	LOG.Fatalf(ctx, format, args...)
}
