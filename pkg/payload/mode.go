// Package payload converts user input into wire buffers and received
// wire buffers into display strings. It is the pure core of udd: no
// I/O, no shared state.
package payload

import "fmt"

// Mode selects how a raw input string is interpreted before
// transmission. It implements pflag.Value so commands can bind it
// directly to a --mode flag.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeHex      Mode = "hex"
	ModeText     Mode = "text"
	ModeProtocol Mode = "mqtt"
)

func (m *Mode) String() string {
	return string(*m)
}

func (m *Mode) Set(v string) error {
	switch v {
	case "auto", "hex", "text", "mqtt":
		*m = Mode(v)
		return nil
	default:
		return fmt.Errorf("must be one of: auto, hex, text, mqtt")
	}
}

func (m *Mode) Type() string {
	return "Mode"
}

// Next returns the mode following m in the interactive cycling order.
func (m Mode) Next() Mode {
	switch m {
	case ModeAuto:
		return ModeProtocol
	case ModeProtocol:
		return ModeText
	case ModeText:
		return ModeHex
	default:
		return ModeAuto
	}
}
