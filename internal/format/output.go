package format

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/places"
	"github.com/glundgren93/fahrplan/internal/timeexpr"
)

var (
	bold      = color.New(color.Bold)
	green     = color.New(color.FgGreen, color.Bold)
	yellow    = color.New(color.FgYellow)
	red       = color.New(color.FgRed)
	cyan      = color.New(color.FgCyan)
	dim       = color.New(color.Faint)
	walkIcon  = "🚶"
	trainIcon = "🚆"
	homeIcon  = "🏠"
	starIcon  = "⭐"
	stopIcon  = "🚏"
	pinIcon   = "📍"
)

// JSON outputs any value as formatted JSON.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Trips prints a trip list in human-readable format.
func Trips(w io.Writer, trips []model.Trip, now time.Time) {
	shown := 0
	for _, t := range trips {
		if dep := t.Departure(); dep != nil && now.Sub(dep.EffectiveTime()) <= staleAfter {
			shown++
		}
	}
	if shown == 0 {
		dim.Fprintln(w, "No connections found.")
		return
	}

	bold.Fprintf(w, "🗺️  %d connection(s)\n", shown)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, t := range trips {
		dep := t.Departure()
		if dep == nil || now.Sub(dep.EffectiveTime()) > staleAfter {
			continue
		}
		fmt.Fprintln(w)
		leaves := dep.EffectiveTime()
		switch {
		case leaves.Before(now.Add(expiringWithin)):
			red.Fprint(w, TripTitle(t))
		default:
			bold.Fprint(w, TripTitle(t))
		}
		dim.Fprintf(w, "  [%s]\n", t.ID)
		from, products, to := subtitleParts(t)
		fmt.Fprintf(w, "  %s → %s\n", from, to)
		if products != "" {
			cyan.Fprintf(w, "  %s %s\n", trainIcon, products)
		}
		for _, warning := range t.Warnings {
			yellow.Fprintf(w, "  ⚠️  %s\n", warning)
		}
	}
	fmt.Fprintln(w)
}

// TripDetail prints the stops of one trip.
func TripDetail(w io.Writer, trip model.Trip) {
	dep, arr := trip.Departure(), trip.Arrival()
	if dep == nil || arr == nil {
		dim.Fprintln(w, "Empty trip.")
		return
	}
	bold.Fprintf(w, "%s %s → %s\n", pinIcon, dep.Place, arr.Place)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, seg := range trip.Segments {
		if seg.Departure != nil {
			printStop(w, *seg.Departure)
		}
		switch {
		case seg.IsWalk():
			walk := model.WalkName
			if seg.By.Distance != nil {
				walk = fmt.Sprintf("%dm %s", *seg.By.Distance, walk)
			}
			if d, ok := Duration(seg.Duration); ok {
				walk += " (ca. " + d + ")"
			}
			dim.Fprintf(w, "        %s %s\n", walkIcon, walk)
		case seg.By != nil:
			cyan.Fprintf(w, "        %s %s\n", trainIcon, strings.ReplaceAll(SegmentSubtitle(seg), "\t", "  "))
		}
		if seg.Arrival != nil {
			printStop(w, *seg.Arrival)
		}
	}
	for _, warning := range trip.Warnings {
		yellow.Fprintf(w, "⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)
}

func printStop(w io.Writer, s model.Stop) {
	fmt.Fprint(w, s.Time.Format(clockLayout))
	if delay := Delay(s); delay != "" {
		red.Fprint(w, delay)
	}
	fmt.Fprintf(w, "  %s", s.Place)
	if s.Platform != "" {
		dim.Fprintf(w, " (Gl. %s)", s.Platform)
	}
	fmt.Fprintln(w)
}

// Places prints place candidates.
func Places(w io.Writer, res *places.Result) {
	if len(res.Places) == 0 {
		dim.Fprintln(w, "No places found.")
		return
	}
	if res.Origin != nil {
		bold.Fprintf(w, "%s From %s\n", pinIcon, res.Origin.Name)
		fmt.Fprintln(w, strings.Repeat("─", 60))
	}
	for i, p := range res.Places {
		mark := pinIcon
		switch {
		case res.IsHome(p):
			mark = homeIcon
		case res.IsFavorite(p):
			mark = starIcon
		case p.IsStation():
			mark = stopIcon
		}
		bold.Fprintf(w, "  %d. ", i+1)
		fmt.Fprintf(w, "%s %-35s ", mark, p.Name)
		dim.Fprintf(w, "(id:%s)\n", p.ID)
	}
	fmt.Fprintln(w)
}

// Time prints a parsed search time.
func Time(w io.Writer, t, now time.Time) {
	when := When(t, now, timeexpr.IsNow(t, now))
	green.Fprintf(w, "🕐 %s", when)
	dim.Fprintf(w, "  (%s)\n", t.Format(time.RFC3339))
}
