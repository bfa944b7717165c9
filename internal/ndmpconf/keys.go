package ndmpconf

import "strings"

// Keys recognised by ndmpadm. The daemon understands more (tcp-port,
// mover-recordsize, ...) but those are managed by hand.
const (
	KeyCleartextUsername = "cleartext-username"
	KeyCleartextPassword = "cleartext-password"
	KeyCramMD5Username   = "cram-md5-username"
	KeyCramMD5Password   = "cram-md5-password"
	KeyListenNIC         = "listen-nic"
	KeyServeNIC          = "serve-nic"
	KeyRestoreFullpath   = "restore-fullpath"
)

// Keys lists the recognised configuration keys
var Keys = []string{
	KeyCleartextUsername,
	KeyCramMD5Username,
	KeyCleartextPassword,
	KeyCramMD5Password,
	KeyListenNIC,
	KeyServeNIC,
	KeyRestoreFullpath,
}

// aliases maps the historical short argument names to configuration keys
var aliases = map[string]string{
	"username":     KeyCleartextUsername,
	"password":     KeyCleartextPassword,
	"username_md5": KeyCramMD5Username,
	"password_md5": KeyCramMD5Password,
	"lnic":         KeyListenNIC,
	"snic":         KeyServeNIC,
	"rsfullpath":   KeyRestoreFullpath,
}

// IsKnownKey reports whether key is one of Keys
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Canonical resolves an argument name (alias or full key) to a configuration
// key. ok is false for anything outside the recognised set.
func Canonical(name string) (key string, ok bool) {
	name = strings.TrimSpace(name)
	if k, found := aliases[name]; found {
		return k, true
	}
	if IsKnownKey(name) {
		return name, true
	}
	return "", false
}
