package link

import (
	"bufio"
	"context"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/whoisnian/glb/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.NewNanoHandler(io.Discard, logger.Options{Level: logger.LevelDebug}))
}

func drainN(t *testing.T, l *Link, n int) []string {
	t.Helper()
	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, l.Drain()...)
		time.Sleep(5 * time.Millisecond)
	}
	return got
}

func TestLinkSplitsLines(t *testing.T) {
	host, device := net.Pipe()
	l := New(context.Background(), host, testLogger())
	defer l.Close()

	go func() {
		for _, chunk := range []string{"TUNING MinSpeed=1", " MaxSpeed=2\nSTA", "TUS fRawSpeed=0.5\r\n", "\n"} {
			if _, err := device.Write([]byte(chunk)); err != nil {
				return
			}
		}
	}()

	got := drainN(t, l, 3)
	want := []string{"TUNING MinSpeed=1 MaxSpeed=2", "STATUS fRawSpeed=0.5", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q; want %q", got, want)
	}
}

func TestLinkDrainEmpty(t *testing.T) {
	host, _ := net.Pipe()
	l := New(context.Background(), host, testLogger())
	defer l.Close()
	if got := l.Drain(); len(got) != 0 {
		t.Errorf("Drain() = %q; want nothing", got)
	}
}

func TestLinkSend(t *testing.T) {
	host, device := net.Pipe()
	l := New(context.Background(), host, testLogger())
	defer l.Close()

	recv := make(chan string, 1)
	go func() {
		s, _ := bufio.NewReader(device).ReadString('\n')
		recv <- s
	}()
	if err := l.Send("REQUEST_TUNING\n"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case s := <-recv:
		if s != "REQUEST_TUNING\n" {
			t.Errorf("device got %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("device never received command")
	}
}

func TestLinkReadErrorAndClose(t *testing.T) {
	host, device := net.Pipe()
	l := New(context.Background(), host, testLogger())
	device.Close()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop")
	}
	if l.Err() == nil {
		t.Error("Err() = nil after peer closed")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := l.Send("REQUEST_TUNING\n"); err != ErrClosed {
		t.Errorf("Send after Close = %v; want ErrClosed", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestLinkCloseIsQuiet(t *testing.T) {
	host, _ := net.Pipe()
	l := New(context.Background(), host, testLogger())
	l.Close()
	if err := l.Err(); err != nil {
		t.Errorf("Err() after Close = %v; want nil", err)
	}
}
