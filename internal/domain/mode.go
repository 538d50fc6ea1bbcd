package domain

import (
	"fmt"
	"strings"
)

// ModeContext is the read-only view of the gallery's addressing mode.
// Exactly one of IsNative and IsVirtual reports true.
type ModeContext interface {
	IsNative() bool
	IsVirtual() bool
	CurrentModeName() string
}

// Mode selects how gallery content is addressed.
//   - ModeNative serves persisted permalinks (/cases/{slug}/, /case-category/{slug}/).
//   - ModeVirtual serves synthetic paths under the gallery base (/gallery/{slug}/).
type Mode string

const (
	ModeNative  Mode = "native"
	ModeVirtual Mode = "virtual"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNative:
		return ModeNative, nil
	case ModeVirtual:
		return ModeVirtual, nil
	}
	return "", fmt.Errorf("%w: mode must be native or virtual, got %q", ErrValidation, s)
}

// IsNative reports whether m is the native mode. Anything that is not
// explicitly native is treated as virtual.
func (m Mode) IsNative() bool { return m == ModeNative }

func (m Mode) IsVirtual() bool { return !m.IsNative() }

func (m Mode) CurrentModeName() string {
	if m.IsNative() {
		return string(ModeNative)
	}
	return string(ModeVirtual)
}

// ModeOf snapshots a ModeContext into a Mode value.
func ModeOf(mc ModeContext) Mode {
	if mc.IsNative() {
		return ModeNative
	}
	return ModeVirtual
}
