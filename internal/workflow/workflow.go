// Package workflow builds the item list a launcher script filter consumes.
package workflow

import (
	"encoding/json"
	"io"
)

// Icon references an image file relative to the workflow directory.
type Icon struct {
	Path string `json:"path"`
}

// Text holds the text for copy and large type actions.
type Text struct {
	Copy      string `json:"copy,omitempty"`
	LargeType string `json:"largetype,omitempty"`
}

// ModKey is a modifier key that selects an alternative item action.
type ModKey string

const (
	ModCmd   ModKey = "cmd"
	ModAlt   ModKey = "alt"
	ModCtrl  ModKey = "ctrl"
	ModShift ModKey = "shift"
	ModFn    ModKey = "fn"
)

// Mod overrides item fields while a modifier key is held.
type Mod struct {
	Valid     bool              `json:"valid"`
	Arg       string            `json:"arg"`
	Subtitle  string            `json:"subtitle,omitempty"`
	Icon      *Icon             `json:"icon,omitempty"`
	Variables map[string]string `json:"variables"`
}

// NewMod returns a valid modifier with the given subtitle and variables.
func NewMod(subtitle string, vars map[string]string) Mod {
	if vars == nil {
		vars = map[string]string{}
	}
	return Mod{Valid: true, Subtitle: subtitle, Variables: vars}
}

// Item is one row of launcher output.
type Item struct {
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	Arg       string            `json:"arg"`
	Valid     bool              `json:"valid"`
	Icon      *Icon             `json:"icon,omitempty"`
	Text      *Text             `json:"text,omitempty"`
	Variables map[string]string `json:"variables"`
	Mods      map[ModKey]Mod    `json:"mods"`
}

// NewItem returns a valid item with the given title.
func NewItem(title string) Item {
	return Item{
		Title:     title,
		Valid:     true,
		Variables: map[string]string{},
		Mods:      map[ModKey]Mod{},
	}
}

// SetVar sets an item variable.
func (i *Item) SetVar(key, value string) {
	if i.Variables == nil {
		i.Variables = map[string]string{}
	}
	i.Variables[key] = value
}

// SetMod sets the override for a modifier key.
func (i *Item) SetMod(key ModKey, mod Mod) {
	if i.Mods == nil {
		i.Mods = map[ModKey]Mod{}
	}
	i.Mods[key] = mod
}

// CloneVars returns a copy of the item variables.
func (i Item) CloneVars() map[string]string {
	out := make(map[string]string, len(i.Variables))
	for k, v := range i.Variables {
		out[k] = v
	}
	return out
}

// Workflow collects items for one invocation.
type Workflow struct {
	Items     []Item            `json:"items"`
	Variables map[string]string `json:"variables,omitempty"`

	alertIcon Icon
}

// New returns an empty workflow. alertIcon is used for warning items.
func New(alertIcon string) *Workflow {
	return &Workflow{Items: []Item{}, alertIcon: Icon{Path: alertIcon}}
}

// Add appends an item.
func (w *Workflow) Add(item Item) {
	w.Items = append(w.Items, item)
}

// Len returns the number of items.
func (w *Workflow) Len() int {
	return len(w.Items)
}

// WarnEmpty replaces all items with a single invalid warning item.
func (w *Workflow) WarnEmpty(title, subtitle string) {
	item := NewItem(title)
	item.Subtitle = subtitle
	item.Valid = false
	icon := w.alertIcon
	item.Icon = &icon
	w.Items = []Item{item}
}

// Encode writes the workflow as script filter JSON.
func (w *Workflow) Encode(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return enc.Encode(w)
}
