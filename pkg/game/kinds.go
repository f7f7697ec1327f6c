package game

import (
	"fmt"
	"strings"
)

// ResourceKind identifies a deception asset type. The set is closed; a
// Coverage value has exactly one slot per kind.
type ResourceKind int

const (
	Honeypot ResourceKind = iota
	DecoyCredential
	Honeytoken
)

// NumKinds is the number of resource kinds.
const NumKinds = 3

var kindNames = [NumKinds]string{
	Honeypot:        "honeypot",
	DecoyCredential: "decoy_credential",
	Honeytoken:      "honeytoken",
}

// Kinds returns every resource kind in enumeration order.
func Kinds() []ResourceKind {
	return []ResourceKind{Honeypot, DecoyCredential, Honeytoken}
}

// Valid reports whether k is one of the enumerated kinds.
func (k ResourceKind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

func (k ResourceKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseResourceKind converts a kind name such as "decoy_credential" to a
// ResourceKind. Matching ignores case and surrounding space.
func ParseResourceKind(s string) (ResourceKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return ResourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ResourceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. yaml.v3 and
// encoding/json both use it, so files may name kinds.
func (k *ResourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
