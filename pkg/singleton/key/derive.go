package key

import (
	"reflect"
	"runtime"
	"unsafe"
)

// Declarer is implemented by types that resolve to an explicit key instead
// of their own type identity. Methods promoted through embedding are honoured,
// so embedding types share the declared key until they shadow the method.
//
// SingletonKey is called on the zero value of the type and must not depend on
// its fields.
type Declarer interface {
	SingletonKey() Key
}

var declarerType = reflect.TypeFor[Declarer]()

// Mode selects the derivation rule.
type Mode uint8

const (
	// ModeType derives one key per exact type.
	ModeType Mode = iota

	// ModeDeclared derives the key a type declares through Declarer,
	// falling back to ModeType.
	ModeDeclared
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeType:
		return "type"
	case ModeDeclared:
		return "declared"
	default:
		return "unknown"
	}
}

// Descriptor describes a logical identity to derive a key from.
type Descriptor struct {
	Type reflect.Type
	Mode Mode
}

// Derive maps a descriptor to a key. It is pure and total: the same
// descriptor always yields the same key and no descriptor is rejected.
// A descriptor without a type yields the zero Key.
func Derive(d Descriptor) Key {
	if d.Type == nil {
		return Key{}
	}
	if d.Mode == ModeDeclared {
		if k, ok := declared(d.Type); ok {
			return k
		}
	}
	return ForType(d.Type)
}

// Declared returns the declared-identity key for T.
func Declared[T any]() Key {
	return Derive(Descriptor{Type: reflect.TypeFor[T](), Mode: ModeDeclared})
}

// declared asks t, or a pointer to t, for its declared key.
func declared(t reflect.Type) (Key, bool) {
	var v reflect.Value
	switch {
	case t.Kind() != reflect.Interface && t.Implements(declarerType):
		v = reflect.Zero(t)
		if t.Kind() == reflect.Pointer {
			// Avoid nil receivers for pointer methods that touch their fields.
			v = reflect.New(t.Elem())
		}
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(declarerType):
		v = reflect.New(t)
	default:
		return Key{}, false
	}

	k := v.Interface().(Declarer).SingletonKey()
	if k.IsZero() {
		return Key{}, false
	}
	return k, true
}

// Func returns the constructor-identity key for fn, which must be a
// function value. Non-function or nil values yield the zero Key.
//
// The key is the identity of the function value, not of its code: every
// reference to a top-level function shares one key, while each closure
// allocation gets its own, even when closures come from the same literal.
// A method value allocates on every evaluation, so bind it once.
func Func(fn any) Key {
	if fn == nil {
		return Key{}
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Key{}
	}
	k := Key{kind: KindFunc, typ: v.Type(), fn: funcValue(fn)}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		k.name = f.Name()
	}
	return k
}

// eface mirrors the layout of an empty interface.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// funcValue returns the closure object fn refers to. Func values are
// pointer-shaped, so the interface data word is that pointer itself.
func funcValue(fn any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&fn)).data
}
