package nic

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const bsdIfconfig = `em0: flags=8843<UP,BROADCAST,RUNNING,SIMPLEX,MULTICAST> metric 0 mtu 1500
	options=9b<RXCSUM,TXCSUM,VLAN_MTU,VLAN_HWTAGGING,VLAN_HWCSUM>
	ether 00:0c:29:aa:bb:cc
	inet 192.168.1.10 netmask 0xffffff00 broadcast 192.168.1.255
	inet 10.0.0.5 netmask 0xff000000 broadcast 10.255.255.255
	media: Ethernet autoselect (1000baseT <full-duplex>)
	status: active
lo0: flags=8049<UP,LOOPBACK,RUNNING,MULTICAST> metric 0 mtu 16384
	inet6 ::1 prefixlen 128
	inet 127.0.0.1 netmask 0xff000000
tun0: flags=8051<UP,POINTOPOINT,RUNNING,MULTICAST> metric 0 mtu 1500
	inet 172.16.0.1 --> 172.16.0.2 netmask 0xffffffff
em1: flags=8802<BROADCAST,SIMPLEX,MULTICAST> metric 0 mtu 1500
	ether 00:0c:29:aa:bb:cd
`

const netToolsIfconfig = `eth0      Link encap:Ethernet  HWaddr 00:0C:29:AA:BB:CC
          inet addr:192.168.2.20  Bcast:192.168.2.255  Mask:255.255.255.0
          UP BROADCAST RUNNING MULTICAST  MTU:1500  Metric:1

lo        Link encap:Local Loopback
          inet addr:127.0.0.1  Mask:255.0.0.0
`

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Interfaces
	}{
		{
			name:  "bsd layout",
			input: bsdIfconfig,
			want: Interfaces{
				"em0": {"192.168.1.10", "10.0.0.5"},
				"em1": {},
			},
		},
		{
			name:  "net-tools layout",
			input: netToolsIfconfig,
			want:  Interfaces{"eth0": {"192.168.2.20"}},
		},
		{
			name:  "empty",
			input: "",
			want:  Interfaces{},
		},
		{
			name:  "garbage",
			input: "    \n\t???\n\tinet 1.2.3.4\n",
			want:  Interfaces{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(strings.NewReader(tt.input), DefaultSkipPrefixes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	nics := Parse(strings.NewReader(bsdIfconfig), DefaultSkipPrefixes)

	if got := nics.Format("em0"); got != "em0(192.168.1.10,10.0.0.5)" {
		t.Errorf("Format(em0) = %q", got)
	}
	if got := nics.Format("em1"); got != "em1()" {
		t.Errorf("Format(em1) = %q", got)
	}
	if got := nics.Names(); !reflect.DeepEqual(got, []string{"em0", "em1"}) {
		t.Errorf("Names() = %v", got)
	}
}

type fakeRunner struct {
	output []byte
	err    error
	calls  [][]string
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	return f.err
}

func (f *fakeRunner) Start(name string, args ...string) error {
	return f.err
}

func TestEnumeratorList(t *testing.T) {
	r := &fakeRunner{output: []byte(bsdIfconfig)}
	e := New(Options{IfconfigPath: "/usr/sbin/ifconfig"}, r)

	nics, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nics) != 2 {
		t.Errorf("got %d interfaces, want 2", len(nics))
	}
	if !reflect.DeepEqual(r.calls, [][]string{{"/usr/sbin/ifconfig"}}) {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestEnumeratorIsValid(t *testing.T) {
	e := New(Options{}, &fakeRunner{output: []byte(bsdIfconfig)})

	ctx := context.Background()
	if !e.IsValid(ctx, "em0") {
		t.Error("em0 should be valid")
	}
	if e.IsValid(ctx, "lo0") {
		t.Error("lo0 should not be valid")
	}

	failing := New(Options{}, &fakeRunner{err: errors.New("exec: not found")})
	if failing.IsValid(ctx, "em0") {
		t.Error("enumeration failure should not validate")
	}
}

func TestEnumeratorValidatorListsOnce(t *testing.T) {
	r := &fakeRunner{output: []byte(bsdIfconfig)}
	valid := New(Options{}, r).Validator(context.Background())

	for _, tt := range []struct {
		name string
		want bool
	}{
		{"em0", true},
		{"em1", true},
		{"lo0", false},
		{"em7", false},
	} {
		if got := valid(tt.name); got != tt.want {
			t.Errorf("valid(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if len(r.calls) != 1 {
		t.Errorf("ifconfig ran %d times, want 1", len(r.calls))
	}

	failing := &fakeRunner{err: errors.New("exec: not found")}
	valid = New(Options{}, failing).Validator(context.Background())
	if valid("em0") || valid("em1") {
		t.Error("enumeration failure should not validate")
	}
	if len(failing.calls) != 1 {
		t.Errorf("failing ifconfig ran %d times, want 1", len(failing.calls))
	}
}

func TestEnumeratorNative(t *testing.T) {
	e := New(Options{Source: SourceNative}, nil)

	nics, err := e.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for name := range nics {
		if strings.HasPrefix(name, "lo") {
			t.Errorf("loopback %s not skipped", name)
		}
	}
}
