package link

import "testing"

func TestSelectPort(t *testing.T) {
	var tests = []struct {
		preferred string
		ports     []PortInfo
		want      string
		wantErr   error
	}{
		{"COM14", nil, "COM14", nil},
		{" /dev/ttyS0 ", []PortInfo{{Name: "/dev/ttyUSB0", USB: true}}, "/dev/ttyS0", nil},
		{"", []PortInfo{{Name: "/dev/ttyS0"}, {Name: "/dev/ttyUSB0", USB: true}}, "/dev/ttyUSB0", nil},
		{"", []PortInfo{{Name: "/dev/ttyS0"}, {Name: "/dev/ttyS1"}}, "/dev/ttyS0", nil},
		{"", nil, "", ErrNoPort},
	}
	for _, test := range tests {
		got, err := SelectPort(test.preferred, test.ports)
		if got != test.want || err != test.wantErr {
			t.Errorf("SelectPort(%q, %v) = %q, %v; want %q, %v", test.preferred, test.ports, got, err, test.want, test.wantErr)
		}
	}
}

func TestPortInfoString(t *testing.T) {
	var tests = []struct {
		p    PortInfo
		want string
	}{
		{PortInfo{Name: "COM3"}, "COM3"},
		{PortInfo{Name: "/dev/ttyACM0", USB: true, VID: "2341", PID: "0043"}, "/dev/ttyACM0 [usb 2341:0043]"},
		{PortInfo{Name: "/dev/ttyACM0", USB: true, VID: "2341", PID: "0043", Product: "Uno"}, "/dev/ttyACM0 [usb 2341:0043 Uno]"},
	}
	for _, test := range tests {
		if got := test.p.String(); got != test.want {
			t.Errorf("String() = %q; want %q", got, test.want)
		}
	}
}
