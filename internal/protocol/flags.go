package protocol

import "strings"

// Flags is the bitfield in the third header field.
// Only the low 3 bits are meaningful.
type Flags uint16

const (
	// FlagSYN marks a connection-establishment packet
	FlagSYN Flags = 0x1
	// FlagACK marks an acknowledgment
	FlagACK Flags = 0x2
	// FlagFIN marks a teardown packet
	FlagFIN Flags = 0x4
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	if f.Has(FlagSYN) {
		names = append(names, "SYN")
	}
	if f.Has(FlagACK) {
		names = append(names, "ACK")
	}
	if f.Has(FlagFIN) {
		names = append(names, "FIN")
	}
	return strings.Join(names, "|")
}
