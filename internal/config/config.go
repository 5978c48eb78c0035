// Package config reads settings and invocation parameters from the
// environment the launcher provides, with command line flags bound on top.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/glundgren93/fahrplan/internal/api"
	"github.com/glundgren93/fahrplan/internal/planner"
)

// Keys of the invocation environment. Environment variables use the exact
// same names.
const (
	KeyMode       = "mode"
	KeyOrigin     = "SOID"
	KeyDest       = "ZOID"
	KeyDateTime   = "dateTime"
	KeyArrival    = "isArrival"
	KeyPaging     = "paging"
	KeyTripID     = "tripId"
	KeyTripLabel  = "trip"
	KeyHome       = "home"
	KeyAction     = "action"
	KeyCacheDir   = "alfred_workflow_cache"
	KeyPrefsDir   = "alfred_preferences"
	KeyDebug      = "debug"
	KeyBaseURL    = "FAHRPLAN_BASE_URL"
	KeyTimeout    = "FAHRPLAN_TIMEOUT"
	KeyDataDir    = "FAHRPLAN_DATA_DIR"
	KeyNotifier   = "FAHRPLAN_NOTIFIER"
	alfredDebug   = "alfred_debug"
	alertIconPath = "/resources/AlertCautionIcon.icns"
)

var envKeys = []string{
	KeyMode, KeyOrigin, KeyDest, KeyDateTime, KeyArrival, KeyPaging, KeyTripID,
	KeyTripLabel, KeyHome, KeyAction, KeyCacheDir, KeyPrefsDir, KeyBaseURL,
	KeyTimeout, KeyDataDir, KeyNotifier,
}

// Settings configure the clients and stores of one invocation.
type Settings struct {
	BaseURL   string        `validate:"required,url"`
	Timeout   time.Duration `validate:"gt=0"`
	DataDir   string        `validate:"required"`
	CacheDir  string        `validate:"required"`
	AlertIcon string
	Home      string
	Notifier  string
	Debug     bool
}

// New returns a viper instance with every key bound to its environment
// variable and the defaults set.
func New() *viper.Viper {
	v := viper.New()
	for _, key := range envKeys {
		_ = v.BindEnv(key, key)
	}
	_ = v.BindEnv(KeyDebug, KeyDebug, alfredDebug)
	v.SetDefault(KeyBaseURL, api.DefaultBaseURL)
	v.SetDefault(KeyTimeout, api.DefaultTimeout)
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyPrefsDir, "../..")
	return v
}

// Load reads and validates the settings. Without a cache directory the
// user cache directory is used.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		BaseURL:   v.GetString(KeyBaseURL),
		Timeout:   v.GetDuration(KeyTimeout),
		DataDir:   v.GetString(KeyDataDir),
		CacheDir:  v.GetString(KeyCacheDir),
		AlertIcon: v.GetString(KeyPrefsDir) + alertIconPath,
		Home:      v.GetString(KeyHome),
		Notifier:  v.GetString(KeyNotifier),
		Debug:     v.GetBool(KeyDebug),
	}
	if s.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			s.CacheDir = filepath.Join(dir, "fahrplan")
		}
	}
	if err := validator.New().Struct(s); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

// Params are the per-invocation parameters. Empty strings mean "not given".
type Params struct {
	Mode          string
	OriginID      string
	DestinationID string
	DateTime      string
	IsArrival     *bool
	Paging        string
	TripID        string
	TripLabel     string
	Action        string
}

// ReadParams reads the invocation parameters. isArrival counts as given only
// when the key is set; it is true only for the literal "true".
func ReadParams(v *viper.Viper) Params {
	p := Params{
		Mode:          v.GetString(KeyMode),
		OriginID:      v.GetString(KeyOrigin),
		DestinationID: v.GetString(KeyDest),
		DateTime:      v.GetString(KeyDateTime),
		Paging:        v.GetString(KeyPaging),
		TripID:        v.GetString(KeyTripID),
		TripLabel:     v.GetString(KeyTripLabel),
		Action:        v.GetString(KeyAction),
	}
	if v.IsSet(KeyArrival) {
		arrival := v.GetString(KeyArrival) == "true"
		p.IsArrival = &arrival
	}
	return p
}

// Request converts the parameters into a planner request. dateTime must be
// RFC 3339 when given.
func (p Params) Request() (planner.Request, error) {
	req := planner.Request{
		OriginID:      p.OriginID,
		DestinationID: p.DestinationID,
		IsArrival:     p.IsArrival,
		Paging:        p.Paging,
	}
	if p.DateTime != "" {
		t, err := time.Parse(time.RFC3339, p.DateTime)
		if err != nil {
			return planner.Request{}, errors.Wrapf(err, "parsing %s %q", KeyDateTime, p.DateTime)
		}
		req.DateTime = t
	}
	return req, nil
}
