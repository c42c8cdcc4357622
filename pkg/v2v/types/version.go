package types

import (
	"github.com/hashicorp/go-version"
)

// SupportedVersion parses a Config's ProtocolVersion once at construction
// time and exposes a cheap comparison used on every message receipt,
// avoiding a semver reparse in the hot path.
type SupportedVersion struct {
	v *version.Version
}

// NewSupportedVersion parses s, returning an error for a caller to
// surface at construction (a malformed version string is a programmer
// error, not a transient fault).
func NewSupportedVersion(s string) (SupportedVersion, error) {
	v, err := version.NewVersion(s)
	if err != nil {
		return SupportedVersion{}, err
	}
	return SupportedVersion{v: v}, nil
}

// Accepts reports whether a message stamped with the given version string
// can be processed by a receiver that understands sv. A message from a
// strictly newer protocol version is rejected; older or equal versions
// are accepted, since this core only ever grows the wire format.
func (sv SupportedVersion) Accepts(messageVersion string) bool {
	mv, err := version.NewVersion(messageVersion)
	if err != nil {
		return false
	}
	return !mv.GreaterThan(sv.v)
}

func (sv SupportedVersion) String() string {
	if sv.v == nil {
		return ""
	}
	return sv.v.String()
}
