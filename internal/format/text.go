package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glundgren93/fahrplan/internal/model"
)

const (
	clockLayout = "15:04"
	// lineLength is the width trip subtitles are padded to.
	lineLength = 100
)

// Duration renders seconds as "1 h 5 min" or "45 min". ok is false when the
// value is shorter than a minute.
func Duration(seconds int) (s string, ok bool) {
	if seconds < 0 {
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours == 0 && minutes == 0 {
		return "", false
	}
	if hours > 0 {
		return fmt.Sprintf("%d h %d min", hours, minutes), true
	}
	return fmt.Sprintf("%d min", minutes), true
}

// Delay renders the delay of a stop as " (+5 min)", or "" when on time.
func Delay(stop model.Stop) string {
	d := stop.Delay()
	s, ok := Duration(int(d / time.Second))
	if !ok {
		return ""
	}
	if d < 0 {
		return " (-" + s + ")"
	}
	return " (+" + s + ")"
}

// TripTitle renders "08:12 (+3 min) — 11:40  |  3 h 28 min  |  1 Umstieg".
func TripTitle(trip model.Trip) string {
	dep, arr := trip.Departure(), trip.Arrival()
	var b strings.Builder
	if dep != nil {
		b.WriteString(dep.Time.Format(clockLayout))
		b.WriteString(Delay(*dep))
	}
	b.WriteString(" — ")
	if arr != nil {
		b.WriteString(arr.Time.Format(clockLayout))
		b.WriteString(Delay(*arr))
	}
	if d, ok := Duration(trip.Duration); ok {
		b.WriteString("  |  " + d)
	}
	if trip.Changes > 0 {
		b.WriteString(fmt.Sprintf("  |  %d %s", trip.Changes, plural(trip.Changes, "Umstieg", "Umstiege")))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Products lists the vehicles of a trip. Short names are preferred except
// for the generic Bus, S and U which say nothing without the line.
func Products(trip model.Trip) string {
	var names []string
	for _, s := range trip.Vehicles() {
		if s.By == nil {
			continue
		}
		name := s.By.ShortName
		switch name {
		case "", "Bus", "S", "U":
			name = s.By.Name
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// Endpoints returns the first and last place served by a vehicle, falling
// back to the overall trip ends for walk-only trips.
func Endpoints(trip model.Trip) (from, to string) {
	vehicles := trip.Vehicles()
	if len(vehicles) > 0 {
		if dep := vehicles[0].Departure; dep != nil {
			from = dep.Place
		}
		if arr := vehicles[len(vehicles)-1].Arrival; arr != nil {
			to = arr.Place
		}
		return from, to
	}
	if dep := trip.Departure(); dep != nil {
		from = dep.Place
	}
	if arr := trip.Arrival(); arr != nil {
		to = arr.Place
	}
	return from, to
}

// TripSubtitle lays out "from  -----  products  ----->  to" centered on
// the products.
func TripSubtitle(from, products, to string) string {
	n0 := utf8.RuneCountInString(from)
	n1 := utf8.RuneCountInString(products)
	n2 := utf8.RuneCountInString(to)
	if n0+n1+n2 > lineLength-10 {
		return from + "  ---  " + products + "  -->  " + to
	}
	x1 := max(1, lineLength/2-n0-n1/2-4)
	x2 := max(1, lineLength/2-n2-n1/2-5)
	return from + "  " + strings.Repeat("-", x1) + "  " + products + "  " + strings.Repeat("-", x2) + ">  " + to
}

// SegmentTitle renders a stop as "12:28 (+7 min)\tHamburg Hbf (Gl. 8)".
func SegmentTitle(stop model.Stop) string {
	title := stop.Time.Format(clockLayout)
	if delay := Delay(stop); delay != "" {
		title += delay
	} else {
		title += " "
	}
	title += "\t" + stop.Place
	if stop.Platform != "" {
		title += " (Gl. " + stop.Platform + ")"
	}
	return title
}

// SegmentSubtitle renders the ride of a segment as "4 h 21 min\tICE 777 (nach Frankfurt(Main)Hbf)".
func SegmentSubtitle(seg model.Segment) string {
	var subtitle string
	if d, ok := Duration(seg.Duration); ok {
		subtitle = d + "\t"
	}
	if seg.By != nil {
		subtitle += seg.By.Name
		if seg.By.Direction != "" {
			subtitle += " (nach " + seg.By.Direction + ")"
		}
	}
	return subtitle
}

// TransferSubtitle describes the gap between segment i and the next one,
// either a walk "5 min\t154m Fußweg (ca. 4 min)" or a change "30 min\tUmstieg".
func TransferSubtitle(trip model.Trip, i int) string {
	if i+1 >= len(trip.Segments) {
		return ""
	}
	cur, next := trip.Segments[i], trip.Segments[i+1]
	subtitle := "      "
	if cur.Arrival != nil && next.Departure != nil {
		if d, ok := Duration(int(next.Departure.Time.Sub(cur.Arrival.Time) / time.Second)); ok {
			subtitle = d
		}
	}
	subtitle += "\t"
	if !next.IsWalk() {
		return subtitle + "Umstieg"
	}
	if next.By.Distance != nil {
		subtitle += fmt.Sprintf("%dm ", *next.By.Distance)
	}
	subtitle += model.WalkName
	if d, ok := Duration(next.Duration); ok {
		subtitle += " (ca. " + d + ")"
	}
	return subtitle
}

// Timetable renders a trip as plain text for copying.
func Timetable(trip model.Trip) string {
	var b strings.Builder
	dep, arr := trip.Departure(), trip.Arrival()
	if dep != nil && arr != nil {
		fmt.Fprintf(&b, "%s  →  %s\n", dep.Place, arr.Place)
	}
	b.WriteString("====\n")
	writeStop := func(s *model.Stop) {
		if s == nil {
			return
		}
		b.WriteString(s.Time.Format(clockLayout) + "\t" + s.Place)
		if s.Platform != "" {
			b.WriteString(" (Gl. " + s.Platform + ")")
		}
		b.WriteString("\n")
	}
	for _, seg := range trip.Segments {
		writeStop(seg.Departure)
		if seg.By != nil {
			b.WriteString("\t\t\t\t" + seg.By.Name + "\n")
		}
		writeStop(seg.Arrival)
		b.WriteString("----\n")
	}
	return b.String()
}

var weekdays = [...]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."}

// When renders t relative to now: "Jetzt" within the now window, "15:04"
// for today and "Sa., 01.06.2024 10:00" otherwise.
func When(t, now time.Time, isNow bool) string {
	if isNow {
		return "Jetzt"
	}
	t = t.In(now.Location())
	if sameDay(t, now) {
		return t.Format(clockLayout)
	}
	return weekdays[t.Weekday()] + ", " + t.Format("02.01.2006 15:04")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
