// Package link carries newline-terminated text between the host and the
// cloud controller over a serial port.
package link

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"github.com/whoisnian/glb/logger"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("link closed")

type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
	Buffer      int // lines held before the reader blocks
}

func (c Config) withDefaults() Config {
	if c.Baud <= 0 {
		c.Baud = 9600
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 50 * time.Millisecond
	}
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	return c
}

// Link owns one port. Lines are read by a background goroutine and picked
// up with Drain; Send may be called from any goroutine.
type Link struct {
	rw  io.ReadWriteCloser
	log *logger.Logger

	lines  chan string
	cancel context.CancelFunc
	done   chan struct{}

	// a serial port configured with a read timeout reports io.EOF when idle
	eofIsIdle bool

	wmu    sync.Mutex
	closed bool

	emu sync.Mutex
	err error
}

// Open opens cfg.Name with 8N1 framing and starts reading.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Link, error) {
	cfg = cfg.withDefaults()
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s @ %d", cfg.Name, cfg.Baud)
	}
	if err := port.Flush(); err != nil {
		log.Debugf(ctx, "flush %s: %v", cfg.Name, err)
	}
	return start(ctx, port, log, cfg.Buffer, true), nil
}

// New starts a link over an arbitrary stream. io.EOF from rw ends the read loop.
func New(ctx context.Context, rw io.ReadWriteCloser, log *logger.Logger) *Link {
	return start(ctx, rw, log, Config{}.withDefaults().Buffer, false)
}

func start(ctx context.Context, rw io.ReadWriteCloser, log *logger.Logger, buffer int, eofIsIdle bool) *Link {
	ctx, cancel := context.WithCancel(ctx)
	l := &Link{
		rw:        rw,
		log:       log,
		lines:     make(chan string, buffer),
		cancel:    cancel,
		done:      make(chan struct{}),
		eofIsIdle: eofIsIdle,
	}
	go l.readLoop(ctx)
	return l
}

func (l *Link) readLoop(ctx context.Context) {
	defer close(l.done)
	var pending []byte
	buf := make([]byte, 512)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := l.rw.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				i := indexNewline(pending)
				if i < 0 {
					break
				}
				line := strings.TrimRight(string(pending[:i]), "\r")
				pending = pending[i+1:]
				l.log.Debugf(ctx, "got line: %q", line)
				select {
				case l.lines <- line:
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF && l.eofIsIdle {
				continue
			}
			if ctx.Err() == nil {
				l.setErr(errors.Wrap(err, "read"))
			}
			return
		}
	}
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return -1
}

// Drain returns every line received since the previous call without blocking.
func (l *Link) Drain() []string {
	var out []string
	for {
		select {
		case line := <-l.lines:
			out = append(out, line)
		default:
			return out
		}
	}
}

// Send writes one command; cmd should carry its own trailing newline.
func (l *Link) Send(cmd string) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.log.Debugf(context.Background(), "sending: %q", cmd)
	n, err := io.WriteString(l.rw, cmd)
	if err != nil {
		return errors.Wrapf(err, "write %q", strings.TrimSpace(cmd))
	}
	if n != len(cmd) {
		return errors.Errorf("incomplete write: %q", cmd[:n])
	}
	return nil
}

// Err reports why the read loop stopped, if it stopped on an error.
func (l *Link) Err() error {
	l.emu.Lock()
	defer l.emu.Unlock()
	return l.err
}

func (l *Link) setErr(err error) {
	l.emu.Lock()
	l.err = err
	l.emu.Unlock()
}

// Done is closed when the read loop exits.
func (l *Link) Done() <-chan struct{} { return l.done }

// Close stops the reader and closes the port.
func (l *Link) Close() error {
	l.wmu.Lock()
	if l.closed {
		l.wmu.Unlock()
		return nil
	}
	l.closed = true
	l.wmu.Unlock()

	l.cancel()
	err := l.rw.Close()
	<-l.done
	return err
}
