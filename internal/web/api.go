package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mycal/internal/datetime"
	"mycal/internal/ics"
	"mycal/internal/layout"
	appLog "mycal/internal/log"
	"mycal/internal/model"
	"mycal/internal/storage"
)

const maxBodyBytes = 1 << 20

// eventDTO is the JSON form of an event. Date is YYYY-MM-DD, times are
// HH:MM and Color is a color name (default Fire).
type eventDTO struct {
	UID         string `json:"uid,omitempty"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Hex         string `json:"hex,omitempty"`
}

func toDTO(e model.Event) eventDTO {
	return eventDTO{
		UID:         ics.EventUID(e),
		Date:        e.Date().ISO(),
		Start:       e.StartTime().Clock(),
		End:         e.EndTime().Clock(),
		Title:       e.Title(),
		Description: e.Description(),
		Color:       e.Color().String(),
		Hex:         e.Color().Hex(),
	}
}

func toDTOs(events []model.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toDTO(e))
	}
	return out
}

func (d eventDTO) event() (model.Event, error) {
	date, err := datetime.ParseISO(d.Date)
	if err != nil {
		return model.Event{}, err
	}
	start, err := datetime.ParseClock(d.Start)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, err := datetime.ParseClock(d.End)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}
	color := model.DefaultColor
	if d.Color != "" {
		if color, err = model.ParseColor(d.Color); err != nil {
			return model.Event{}, err
		}
	}
	return model.NewEvent(date, start, end, d.Title, d.Description, color)
}

type addResponse struct {
	Event     eventDTO   `json:"event"`
	Conflicts []eventDTO `json:"conflicts"`
}

type replaceRequest struct {
	Old eventDTO `json:"old"`
	New eventDTO `json:"new"`
}

// errBadRequest marks request bodies that are not valid JSON.
var errBadRequest = errors.New("malformed request body")

// GET /api/events[?date=YYYY-MM-DD | ?from=...&to=...]
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("date") != "":
		date, err := datetime.ParseISO(q.Get("date"))
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDTOs(s.store.EventsOn(date)))
	case q.Get("from") != "" || q.Get("to") != "":
		from, err := datetime.ParseISO(q.Get("from"))
		if err != nil {
			s.writeFailure(w, fmt.Errorf("from: %w", err))
			return
		}
		to, err := datetime.ParseISO(q.Get("to"))
		if err != nil {
			s.writeFailure(w, fmt.Errorf("to: %w", err))
			return
		}
		writeJSON(w, http.StatusOK, toDTOs(s.store.EventsBetween(from, to)))
	default:
		writeJSON(w, http.StatusOK, toDTOs(s.store.Events()))
	}
}

// POST /api/events
func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var dto eventDTO
	if err := decodeBody(r, &dto); err != nil {
		s.writeFailure(w, err)
		return
	}
	e, err := dto.event()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	err = s.store.Add(e)
	s.metrics.mutation("add", err)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	appLog.Info("event added", "date", e.Date().ISO(), "start", e.StartTime().Clock(), "title", e.Title())
	writeJSON(w, http.StatusCreated, addResponse{
		Event:     toDTO(e),
		Conflicts: toDTOs(s.store.Conflicts(e)),
	})
}

// DELETE /api/events with the event as body.
func (s *Server) handleRemoveEvent(w http.ResponseWriter, r *http.Request) {
	var dto eventDTO
	if err := decodeBody(r, &dto); err != nil {
		s.writeFailure(w, err)
		return
	}
	e, err := dto.event()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	err = s.store.Remove(e)
	s.metrics.mutation("remove", err)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	appLog.Info("event removed", "date", e.Date().ISO(), "title", e.Title())
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/events with {"old": ..., "new": ...}.
func (s *Server) handleReplaceEvent(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, err)
		return
	}
	old, err := req.Old.event()
	if err != nil {
		s.writeFailure(w, fmt.Errorf("old: %w", err))
		return
	}
	updated, err := req.New.event()
	if err != nil {
		s.writeFailure(w, fmt.Errorf("new: %w", err))
		return
	}
	err = s.store.Replace(old, updated)
	s.metrics.mutation("replace", err)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	appLog.Info("event replaced", "date", updated.Date().ISO(), "title", updated.Title())
	writeJSON(w, http.StatusOK, toDTO(updated))
}

type blockDTO struct {
	Event     eventDTO `json:"event"`
	StartSlot int      `json:"start_slot"`
	Slots     int      `json:"slots"`
	Lane      int      `json:"lane"`
	Lanes     int      `json:"lanes"`
}

type dayDTO struct {
	Date    string     `json:"date"`
	Weekday string     `json:"weekday"`
	Today   bool       `json:"today"`
	Beyond  bool       `json:"beyond,omitempty"`
	Blocks  []blockDTO `json:"blocks"`
}

type weekDTO struct {
	Anchor string   `json:"anchor"`
	Start  string   `json:"start"`
	Prev   string   `json:"prev,omitempty"`
	Next   string   `json:"next,omitempty"`
	Days   []dayDTO `json:"days"`
}

// GET /api/week?date=YYYY-MM-DD
func (s *Server) handleWeekJSON(w http.ResponseWriter, r *http.Request) {
	week, err := s.week(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	out := weekDTO{
		Anchor: week.Anchor.ISO(),
		Start:  week.Start().ISO(),
		Days:   make([]dayDTO, 0, len(week.Days)),
	}
	if d, err := week.Prev(); err == nil {
		out.Prev = d.ISO()
	}
	if d, err := week.Next(); err == nil {
		out.Next = d.ISO()
	}
	for _, day := range week.Days {
		dd := dayDTO{
			Date:    day.Date.ISO(),
			Weekday: day.Weekday.String(),
			Today:   day.Today,
			Beyond:  day.Beyond,
			Blocks:  make([]blockDTO, 0, len(day.Blocks)),
		}
		for _, b := range day.Blocks {
			dd.Blocks = append(dd.Blocks, blockDTO{
				Event:     toDTO(b.Event),
				StartSlot: b.StartSlot,
				Slots:     b.Slots,
				Lane:      b.Lane,
				Lanes:     b.Lanes,
			})
		}
		out.Days = append(out.Days, dd)
	}
	writeJSON(w, http.StatusOK, out)
}

// week lays out the week named by the date query parameter, or the current
// week.
func (s *Server) week(r *http.Request) (layout.WeekView, error) {
	today, err := datetime.DateOf(s.now())
	if err != nil {
		return layout.WeekView{}, err
	}
	anchor := today
	if v := r.URL.Query().Get("date"); v != "" {
		if anchor, err = datetime.ParseISO(v); err != nil {
			return layout.WeekView{}, err
		}
	}
	first, last := layout.Bounds(anchor)
	week := layout.Week(s.store.EventsBetween(first, last), anchor)
	week.MarkToday(today)
	return week, nil
}

// GET /calendar.ics
func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if err := ics.Export(w, s.store.Events(), s.now()); err != nil {
		appLog.Error("ics export failed", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps calendar errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, model.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, storage.ErrNotPersisted):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest),
		errors.Is(err, datetime.ErrInvalidDate),
		errors.Is(err, datetime.ErrInvalidTime),
		errors.Is(err, datetime.ErrInvalidRange),
		errors.Is(err, datetime.ErrOutOfRange),
		errors.Is(err, model.ErrReservedToken),
		errors.Is(err, model.ErrUnknownColor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		appLog.Error("change kept in memory but not saved", err)
		writeError(w, status, "change accepted but not yet saved; do not retry")
		return
	}
	if status == http.StatusInternalServerError {
		appLog.Error("request failed", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
