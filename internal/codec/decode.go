package codec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mycal/internal/datetime"
	"mycal/internal/model"
)

// ErrMalformedInput reports a record whose structure cannot be read.
var ErrMalformedInput = errors.New("malformed calendar data")

// ParseError locates a decode failure at a 1-based event record.
type ParseError struct {
	Record int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("codec: event record %d: %v", e.Record, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode reads a calendar written by Encode. Anything before the first banner
// and any unknown token inside a record is skipped. Fields missing from a
// record take defaults, except the date and both times, which are required.
//
// On failure the returned calendar is nil; partially read data is never
// returned.
func Decode(r io.Reader) (*model.Calendar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read: %w", err)
	}
	return DecodeString(string(data))
}

// DecodeString is Decode over an in-memory string.
func DecodeString(s string) (*model.Calendar, error) {
	sc := &scanner{src: s}
	cal := model.New()
	record := 0
	for {
		tok, ok := sc.next()
		if !ok {
			return cal, nil
		}
		if tok != model.Banner {
			continue
		}
		record++
		e, err := readEvent(sc)
		if err == nil {
			err = cal.Add(e)
		}
		if err != nil {
			return nil, &ParseError{Record: record, Err: err}
		}
	}
}

type fields struct {
	date        datetime.Date
	start, end  datetime.Time
	haveDate    bool
	haveStart   bool
	haveEnd     bool
	title       string
	description string
	color       model.Color
}

// readEvent consumes one record up to and including its closing banner, or
// to end of input.
func readEvent(sc *scanner) (model.Event, error) {
	f := fields{color: model.DefaultColor}
	for {
		tok, ok := sc.next()
		if !ok || tok == model.Banner {
			break
		}
		switch tok {
		case "date:":
			n, err := sc.ints(3)
			if err != nil {
				return model.Event{}, fmt.Errorf("date: %w", err)
			}
			d, err := datetime.NewDate(n[0], n[1], n[2])
			if err != nil {
				return model.Event{}, err
			}
			f.date, f.haveDate = d, true
		case "start_time:", "end_time:":
			n, err := sc.ints(2)
			if err != nil {
				return model.Event{}, fmt.Errorf("%s %w", tok, err)
			}
			t, err := datetime.NewTime(n[0], n[1])
			if err != nil {
				return model.Event{}, err
			}
			if tok == "start_time:" {
				f.start, f.haveStart = t, true
			} else {
				f.end, f.haveEnd = t, true
			}
		case "title:":
			f.title = sc.textBlock()
		case "description:":
			f.description = sc.textBlock()
		case "color:":
			name, ok := sc.next()
			if !ok {
				return model.Event{}, fmt.Errorf("color: %w: unexpected end of input", ErrMalformedInput)
			}
			c, err := model.ParseColor(name)
			if err != nil {
				return model.Event{}, err
			}
			f.color = c
		}
	}

	switch {
	case !f.haveDate:
		return model.Event{}, fmt.Errorf("%w: missing date", ErrMalformedInput)
	case !f.haveStart:
		return model.Event{}, fmt.Errorf("%w: missing start_time", ErrMalformedInput)
	case !f.haveEnd:
		return model.Event{}, fmt.Errorf("%w: missing end_time", ErrMalformedInput)
	}
	return model.NewEvent(f.date, f.start, f.end, f.title, f.description, f.color)
}

// scanner walks the input both by whitespace-separated token and by line.
type scanner struct {
	src string
	pos int
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (s *scanner) next() (string, bool) {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == len(s.src) {
		return "", false
	}
	start := s.pos
	for s.pos < len(s.src) && !isSpace(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos], true
}

// nextLine returns the rest of the current line without its newline.
func (s *scanner) nextLine() (string, bool) {
	if s.pos >= len(s.src) {
		return "", false
	}
	rest := s.src[s.pos:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		s.pos += i + 1
		return rest[:i], true
	}
	s.pos = len(s.src)
	return rest, true
}

func (s *scanner) ints(n int) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		tok, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("%w: unexpected end of input", ErrMalformedInput)
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: expected integer, got %q", ErrMalformedInput, tok)
		}
		out[i] = v
	}
	return out, nil
}

// textBlock reads the lines after a title: or description: keyword up to the
// next separator line and joins them with newlines. Text on the keyword's own
// line counts as the first line when it is not blank.
func (s *scanner) textBlock() string {
	var lines []string
	if rest, ok := s.nextLine(); ok && strings.TrimSpace(rest) != "" {
		lines = append(lines, strings.TrimPrefix(rest, " "))
	}
	for {
		line, ok := s.nextLine()
		if !ok || line == model.Separator {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
