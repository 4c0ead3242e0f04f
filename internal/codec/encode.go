// Package codec reads and writes the calendar file format: a sequence of
// banner-delimited event records, each holding an event's canonical text.
//
//	##########################################
//	Event 1/2
//	-------------------------------------
//	date: 2020 01 02
//	...
//	-------------------------------------
//	##########################################
package codec

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"mycal/internal/model"
)

// Encode renders cal in file format. There is no newline after the last
// banner, and an empty calendar encodes to the empty string.
func Encode(cal *model.Calendar) string {
	var b strings.Builder
	_ = encode(&b, cal.Events())
	return b.String()
}

// EncodeTo writes cal in file format to w.
func EncodeTo(w io.Writer, cal *model.Calendar) error {
	bw := bufio.NewWriter(w)
	if err := encode(bw, cal.Events()); err != nil {
		return err
	}
	return bw.Flush()
}

func encode(w io.StringWriter, events []model.Event) error {
	total := strconv.Itoa(len(events))
	for i, e := range events {
		parts := []string{
			model.Banner, "\n",
			"Event ", strconv.Itoa(i + 1), "/", total, "\n",
			e.String(),
			model.Banner,
		}
		if i < len(events)-1 {
			parts = append(parts, "\n")
		}
		for _, p := range parts {
			if _, err := w.WriteString(p); err != nil {
				return err
			}
		}
	}
	return nil
}
