package format

import (
	"time"

	"github.com/glundgren93/fahrplan/internal/model"
	"github.com/glundgren93/fahrplan/internal/places"
	"github.com/glundgren93/fahrplan/internal/timeexpr"
	"github.com/glundgren93/fahrplan/internal/workflow"
)

// Workflow variable names and modes understood by the launcher.
const (
	VarMode      = "mode"
	VarOrigin    = "SOID"
	VarDest      = "ZOID"
	VarDateTime  = "dateTime"
	VarArrival   = "isArrival"
	VarPaging    = "paging"
	VarTripID    = "tripId"
	VarTripLabel = "trip"
	VarAction    = "action"

	ModeSetPlace    = "setPlace"
	ModeSetTime     = "setTime"
	ModeSearchTrips = "searchTrips"
	ModeCachedTrips = "cachedTrips"

	ActionSavePlace   = "savePlace"
	ActionRemovePlace = "removePlace"
)

const (
	// staleAfter hides trips that departed this long ago.
	staleAfter = 600 * time.Second
	// expiringWithin marks trips leaving this soon as missed.
	expiringWithin = 60 * time.Second
)

func icon(name string) *workflow.Icon {
	return &workflow.Icon{Path: "./icons/" + name + ".png"}
}

// TripItems adds one item per trip plus a paging item. Trips that departed
// long ago are skipped; an empty result becomes a "No Results" warning.
func TripItems(w *workflow.Workflow, trips []model.Trip, refs map[string]string, now time.Time) {
	for _, trip := range trips {
		dep := trip.Departure()
		if dep == nil {
			continue
		}
		leaves := dep.EffectiveTime()
		if now.Sub(leaves) > staleAfter {
			continue
		}
		item := workflow.NewItem(TripTitle(trip))
		item.Subtitle = TripSubtitle(subtitleParts(trip))
		if leaves.Before(now.Add(expiringWithin)) {
			item.Icon = icon("trip_exp")
		} else {
			item.Icon = icon("trip")
		}
		item.Text = &workflow.Text{Copy: Timetable(trip)}
		item.SetVar(VarTripID, trip.ID)
		item.SetVar(VarPaging, "")
		item.SetVar(VarMode, ModeCachedTrips)
		w.Add(item)
	}
	if w.Len() == 0 {
		w.WarnEmpty("No Results", "")
		return
	}
	if len(refs) == 0 {
		return
	}

	more := workflow.NewItem("Mehr Verbindungen")
	more.Subtitle = "Später"
	more.Icon = icon("next")
	more.SetVar(VarPaging, refs[model.PageLater])
	more.SetVar(VarMode, ModeSearchTrips)
	if earlier := refs[model.PageEarlier]; earlier != "" {
		mod := workflow.NewMod("Früher", map[string]string{VarPaging: earlier, VarMode: ModeSearchTrips})
		mod.Icon = icon("previous")
		more.SetMod(workflow.ModCmd, mod)
	}
	rerun := workflow.NewMod("Neue Suche", map[string]string{
		VarMode:     ModeSearchTrips,
		VarDateTime: now.Add(model.DefaultLeadTime).Format(time.RFC3339),
		VarPaging:   "",
	})
	rerun.Icon = icon("rerun")
	more.SetMod(workflow.ModAlt, rerun)
	w.Add(more)
}

func subtitleParts(trip model.Trip) (string, string, string) {
	from, to := Endpoints(trip)
	return from, Products(trip), to
}

// TripDetailItems adds the stops of a trip: a departure item per vehicle and
// an arrival item describing the transfer to the next segment. Walks between
// vehicles are folded into the transfer text; a trailing walk keeps its
// arrival. label is passed as the item argument.
func TripDetailItems(w *workflow.Workflow, trip model.Trip, label string) {
	table := Timetable(trip)
	last := len(trip.Segments) - 1
	for i, seg := range trip.Segments {
		if seg.IsWalk() && i != last {
			continue
		}
		if !seg.IsWalk() && seg.Departure != nil {
			item := workflow.NewItem(SegmentTitle(*seg.Departure))
			item.Subtitle = SegmentSubtitle(seg)
			item.Arg = label
			item.Text = &workflow.Text{Copy: table}
			item.SetVar(VarTripID, "")
			w.Add(item)
		}
		if seg.Arrival == nil {
			continue
		}
		item := workflow.NewItem(SegmentTitle(*seg.Arrival))
		item.Subtitle = TransferSubtitle(trip, i)
		item.Arg = label
		item.Text = &workflow.Text{Copy: table}
		item.SetVar(VarTripID, "")
		w.Add(item)
	}
}

// TimeItem adds the item confirming a parsed search time. Holding cmd turns
// the search into an arrival search.
func TimeItem(w *workflow.Workflow, t, now time.Time) {
	stamp := t.Format(time.RFC3339)
	item := workflow.NewItem(When(t, now, timeexpr.IsNow(t, now)))
	item.Subtitle = "Abfahrt"
	item.Icon = icon("clock")
	item.SetVar(VarMode, ModeSearchTrips)
	item.SetVar(VarDateTime, stamp)
	arrival := workflow.NewMod("Ankunft", item.CloneVars())
	arrival.Variables[VarArrival] = "true"
	item.SetMod(workflow.ModCmd, arrival)
	w.Add(item)
}

// PlaceItems adds one item per candidate. Without an origin the items pick
// the origin and shift toggles the favorite; with an origin they pick the
// destination and cmd asks for a time first.
func PlaceItems(w *workflow.Workflow, res *places.Result) {
	for _, p := range res.Places {
		item := workflow.NewItem(p.Name)
		switch {
		case res.IsHome(p):
			item.Icon = icon("home")
		case res.IsFavorite(p):
			item.Icon = icon("favorite")
		case p.IsStation():
			item.Icon = icon("station")
		default:
			item.Icon = icon("address")
		}

		if res.Origin != nil {
			label := res.Origin.Name + " → " + p.Name
			item.Arg = label
			item.SetVar(VarTripLabel, label)
			item.SetVar(VarDest, p.ID)
			item.SetVar(VarMode, ModeSearchTrips)
			vars := item.CloneVars()
			vars[VarMode] = ModeSetTime
			mod := workflow.NewMod("Zeit angeben …", vars)
			mod.Icon = icon("clock")
			item.SetMod(workflow.ModCmd, mod)
			w.Add(item)
			continue
		}

		var mod workflow.Mod
		if res.IsFavorite(p) {
			mod = workflow.NewMod("Von Favoriten entfernen", map[string]string{VarAction: ActionRemovePlace})
			mod.Icon = icon("trash")
		} else {
			mod = workflow.NewMod("Zu Favoriten speichern", map[string]string{VarAction: ActionSavePlace})
			mod.Icon = icon("favorite")
		}
		mod.Arg = p.ID
		item.SetMod(workflow.ModShift, mod)
		item.SetVar(VarOrigin, p.ID)
		w.Add(item)
	}
}
