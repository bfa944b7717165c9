package ndmpconf

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodePasswordRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single padding", in: "ab", want: "YWI="},
		{name: "double padding", in: "a", want: "YQ=="},
		{name: "contains equals", in: "p=ss==", want: "cD1zcz09"},
		{name: "no padding", in: "abc", want: "YWJj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodePassword(tt.in)
			if got != tt.want {
				t.Errorf("EncodePassword(%q) = %q, want %q", tt.in, got, tt.want)
			}
			dec, err := DecodePassword(got)
			if err != nil {
				t.Fatalf("DecodePassword(%q): %v", got, err)
			}
			if dec != tt.in {
				t.Errorf("round trip = %q, want %q", dec, tt.in)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	nics := map[string]bool{"eth0": true, "eth1": true}
	b := &Builder{ValidNIC: func(name string) bool { return nics[name] }}

	tests := []struct {
		name    string
		args    []string
		want    ChangeSet
		wantErr bool
	}{
		{
			name: "aliases",
			args: []string{"username=admin", "password=secret", "rsfullpath=true"},
			want: ChangeSet{
				KeyCleartextUsername: "admin",
				KeyCleartextPassword: "c2VjcmV0",
				KeyRestoreFullpath:   "TRUE",
			},
		},
		{
			name: "full key names",
			args: []string{"cram-md5-username=md5user", "cram-md5-password=x=y"},
			want: ChangeSet{
				KeyCramMD5Username: "md5user",
				KeyCramMD5Password: "eD15",
			},
		},
		{
			name: "serve nic follows listen nic",
			args: []string{"lnic=eth0"},
			want: ChangeSet{KeyListenNIC: "eth0", KeyServeNIC: "eth0"},
		},
		{
			name: "explicit serve nic",
			args: []string{"lnic=eth0", "snic=eth1"},
			want: ChangeSet{KeyListenNIC: "eth0", KeyServeNIC: "eth1"},
		},
		{
			name: "empty listen nic clears only itself",
			args: []string{"listen-nic="},
			want: ChangeSet{KeyListenNIC: ""},
		},
		{name: "unknown interface", args: []string{"lnic=wlan7"}, wantErr: true},
		{name: "unknown key", args: []string{"tcp-port=10001"}, wantErr: true},
		{name: "bare word", args: []string{"bogus"}, wantErr: true},
		{name: "bad bool", args: []string{"rsfullpath=enable"}, wantErr: true},
		{name: "nothing", args: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrArgument) {
					t.Errorf("Build() error = %v, want ErrArgument", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildPromptsForPassword(t *testing.T) {
	var asked []string
	b := &Builder{
		ReadPassword: func(key string) (string, error) {
			asked = append(asked, key)
			return "typed", nil
		},
	}

	got, err := b.Build([]string{"password=-"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got[KeyCleartextPassword] != EncodePassword("typed") {
		t.Errorf("password = %q, want %q", got[KeyCleartextPassword], EncodePassword("typed"))
	}
	if !reflect.DeepEqual(asked, []string{KeyCleartextPassword}) {
		t.Errorf("asked = %v", asked)
	}
}

func TestBuildWithoutNICCheck(t *testing.T) {
	b := &Builder{}
	got, err := b.Build([]string{"snic=anything0"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got[KeyServeNIC] != "anything0" {
		t.Errorf("serve-nic = %q", got[KeyServeNIC])
	}
}

func TestParseClassifiesLines(t *testing.T) {
	f := &File{Lines: []Line{
		parseLine(1, ""),
		parseLine(2, "# comment"),
		parseLine(3, "listen-nic=eth0"),
		parseLine(4, "junk"),
	}}
	kinds := []LineKind{LineBlank, LineComment, LineEntry, LineMalformed}
	for i, l := range f.Lines {
		if l.Kind != kinds[i] {
			t.Errorf("line %d kind = %v, want %v", l.Number, l.Kind, kinds[i])
		}
	}
	if m := f.Malformed(); len(m) != 1 || m[0].Number != 4 {
		t.Errorf("Malformed() = %v", m)
	}
}
