package model

import "fmt"

// Color is the closed set of colors an event can be drawn in.
type Color int

const (
	Rose Color = iota
	Forest
	Ice
	Fire
)

// DefaultColor is used when a calendar file does not name a color.
const DefaultColor = Fire

var colorTable = [...]struct {
	name    string
	r, g, b uint8
}{
	Rose:   {"Rose", 247, 25, 73},
	Forest: {"Forest", 170, 212, 129},
	Ice:    {"Ice", 77, 184, 250},
	Fire:   {"Fire", 247, 72, 72},
}

// Colors lists every color in declaration order.
func Colors() []Color {
	return []Color{Rose, Forest, Ice, Fire}
}

// ParseColor looks a color up by its exact, case-sensitive name.
func ParseColor(name string) (Color, error) {
	for i, c := range colorTable {
		if c.name == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

func (c Color) valid() bool {
	return c >= Rose && c <= Fire
}

// String is the color name, e.g. "Fire".
func (c Color) String() string {
	if !c.valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorTable[c].name
}

// RGB returns the color components. Invalid colors report DefaultColor.
func (c Color) RGB() (r, g, b uint8) {
	if !c.valid() {
		c = DefaultColor
	}
	e := colorTable[c]
	return e.r, e.g, e.b
}

// RGBString renders "rgb(247, 72, 72)".
func (c Color) RGBString() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// Hex renders "#F74848".
func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
