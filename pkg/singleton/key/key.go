package key

import (
	"fmt"
	"reflect"
	"regexp"
	"unsafe"
)

// closureName matches runtime names of function literals, such as
// "pkg.newDialer.func1" or "pkg.init.func2.3".
var closureName = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// Kind classifies how a key was derived.
type Kind uint8

const (
	// KindNone is the zero kind. Keys of this kind are invalid.
	KindNone Kind = iota

	// KindType keys identify an exact Go type.
	KindType

	// KindTag keys identify an explicit, caller-chosen name.
	KindTag

	// KindFunc keys identify a constructor function.
	KindFunc
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindTag:
		return "tag"
	case KindFunc:
		return "func"
	default:
		return "none"
	}
}

// Key identifies a singleton entry. Keys are comparable and may be used as
// map keys. The zero Key is invalid.
type Key struct {
	kind Kind
	typ  reflect.Type
	name string
	fn   unsafe.Pointer
}

// Kind returns how the key was derived.
func (k Key) Kind() Kind { return k.kind }

// Type returns the type the key refers to, if any.
// For KindFunc keys this is the constructor's function type.
func (k Key) Type() reflect.Type { return k.typ }

// IsZero reports whether the key is invalid.
func (k Key) IsZero() bool {
	switch k.kind {
	case KindType:
		return k.typ == nil
	case KindTag:
		return k.name == ""
	case KindFunc:
		return k.fn == nil
	default:
		return true
	}
}

// String returns a human-readable representation such as "type:*db.Pool"
// or "tag:config".
func (k Key) String() string {
	switch k.kind {
	case KindType:
		if k.typ == nil {
			return "type:<nil>"
		}
		return "type:" + k.typ.String()
	case KindTag:
		return "tag:" + k.name
	case KindFunc:
		// Closures of one literal share a name, so their address tells them apart.
		if k.name != "" && !closureName.MatchString(k.name) {
			return "func:" + k.name
		}
		return fmt.Sprintf("func:%s@%p", k.name, k.fn)
	default:
		return "<empty>"
	}
}

// Tag returns a declared key with an explicit name.
// Tag("") returns the zero Key.
func Tag(name string) Key {
	if name == "" {
		return Key{}
	}
	return Key{kind: KindTag, name: name}
}

// ForType returns the type-identity key for t.
// A nil type yields the zero Key.
func ForType(t reflect.Type) Key {
	if t == nil {
		return Key{}
	}
	return Key{kind: KindType, typ: t}
}

// Of returns the type-identity key for T.
func Of[T any]() Key {
	return ForType(reflect.TypeFor[T]())
}
