package model

import (
	"errors"
	"testing"
)

func TestColorTable(t *testing.T) {
	cases := []struct {
		c       Color
		name    string
		r, g, b uint8
		hex     string
	}{
		{Rose, "Rose", 247, 25, 73, "#F71949"},
		{Forest, "Forest", 170, 212, 129, "#AAD481"},
		{Ice, "Ice", 77, 184, 250, "#4DB8FA"},
		{Fire, "Fire", 247, 72, 72, "#F74848"},
	}
	for _, tc := range cases {
		r, g, b := tc.c.RGB()
		if tc.c.String() != tc.name || r != tc.r || g != tc.g || b != tc.b || tc.c.Hex() != tc.hex {
			t.Fatalf("unexpected values for %s: %d %d %d %s", tc.name, r, g, b, tc.c.Hex())
		}
		parsed, err := ParseColor(tc.name)
		if err != nil || parsed != tc.c {
			t.Fatalf("ParseColor(%q): got %v (%v)", tc.name, parsed, err)
		}
	}
	if Fire.RGBString() != "rgb(247, 72, 72)" {
		t.Fatalf("unexpected rgb string %q", Fire.RGBString())
	}
	if DefaultColor != Fire {
		t.Fatalf("expected Fire as default color")
	}
}

func TestParseColorIsCaseSensitive(t *testing.T) {
	for _, name := range []string{"rose", "FIRE", "Blue", ""} {
		if _, err := ParseColor(name); !errors.Is(err, ErrUnknownColor) {
			t.Fatalf("ParseColor(%q): expected ErrUnknownColor, got %v", name, err)
		}
	}
}

func TestColorText(t *testing.T) {
	text, err := Ice.MarshalText()
	if err != nil || string(text) != "Ice" {
		t.Fatalf("expected Ice, got %q (%v)", text, err)
	}
	var c Color
	if err := c.UnmarshalText([]byte("Rose")); err != nil || c != Rose {
		t.Fatalf("expected Rose, got %v (%v)", c, err)
	}
	if err := c.UnmarshalText([]byte("Mauve")); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
}
