package model

// Flags is the opaque state bitmask stored on a short URL document. The bit
// assignments come from configuration (config.FlagsConfig); Flags itself only
// knows how to test bits.
type Flags int64

// Has reports whether the given bit is set.
func (f Flags) Has(bit int64) bool {
	return int64(f)&bit != 0
}

// FlagBits carries the configured bit assignment for each semantic flag and
// knows how to derive a bitmask from the gates present on a new document.
type FlagBits struct {
	Deprecated int64
	Passphrase int64
	Login      int64
	Frame      int64
}

// Compose builds the bitmask for a new document from which gates it carries.
func (b FlagBits) Compose(passphrase, login, frame bool) Flags {
	var f int64
	if passphrase {
		f |= b.Passphrase
	}
	if login {
		f |= b.Login
	}
	if frame {
		f |= b.Frame
	}
	return Flags(f)
}
