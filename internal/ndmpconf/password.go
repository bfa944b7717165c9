package ndmpconf

import "encoding/base64"

// EncodePassword base64-encodes a password for storage. If the encoding does
// not decode back to the same bytes the value is rejected and "" is returned.
func EncodePassword(val string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(val))

	dec, err := base64.StdEncoding.DecodeString(enc)
	if err != nil || string(dec) != val {
		return ""
	}
	return enc
}

// DecodePassword reverses EncodePassword
func DecodePassword(enc string) (string, error) {
	dec, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
