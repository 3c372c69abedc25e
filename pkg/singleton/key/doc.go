/*
Package key derives registry keys from logical identities.

# Overview

A Key is an opaque, comparable value used by the singleton registry to
find an entry. How a key is derived decides whether related types share
one instance or get one each.

# Type Identity

Of derives a key unique to the exact Go type. Types that embed a common
base still get distinct keys:

	type Base struct{}
	type A struct{ Base }
	type B struct{ Base }

	key.Of[Base]() != key.Of[A]() // true
	key.Of[A]() != key.Of[B]()    // true

# Declared Identity

A type declares the key it resolves to by implementing Declarer. Because
Go promotes methods through embedding, every type embedding Base resolves
to Base's key until it declares its own:

	func (Base) SingletonKey() key.Key { return key.Tag("base") }

	type C struct{ Base }
	func (C) SingletonKey() key.Key { return key.Tag("c") } // shadows Base

	key.Declared[A]() == key.Declared[Base]() // true
	key.Declared[C]() == key.Declared[Base]() // false

Types that declare nothing fall back to their type identity.

# Constructor Identity

Func derives a key from a constructor function value. Every reference to
the same top-level function shares a key. Each closure value gets its own
key, so two closures built by one factory with different captured state
never share an instance.

Derivation never fails. Derive with a zero Descriptor returns the zero Key,
which registries reject.
*/
package key
