package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"

	"github.com/glundgren93/fahrplan/internal/model"
)

const (
	DefaultBaseURL = "https://www.bahn.de/web/api"

	DefaultTimeout = 15 * time.Second

	// timeLayout is the backend's local wall-clock format, without zone.
	timeLayout = "2006-01-02T15:04:05"

	maxErrorBody = 200
)

// Client is the journey planner API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	loc        *time.Location
	logger     *slog.Logger
	places     gcache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another backend, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLocation sets the zone used to format request times and to read
// response times. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		c.loc = loc
	}
}

// WithLogger sets the logger used for dropped-record diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new journey planner client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: DefaultBaseURL,
		loc:     time.Local,
		logger:  slog.Default(),
		places:  newPlaceCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, newError(KindNetwork, errors.Wrap(err, "creating gzip reader"))
		}
		defer gr.Close()
		reader = gr
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, newError(KindNetwork, errors.Wrap(err, "reading response"))
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newError(KindEmptyResponse, nil)
	}
	return body, nil
}

// LookupPlaces searches stations, addresses and points of interest by keyword.
func (c *Client) LookupPlaces(ctx context.Context, query string) ([]model.Place, error) {
	if cached, ok := c.cachedPlaces(query); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("suchbegriff", query)
	params.Set("typ", "ALL")
	params.Set("limit", "10")

	u := c.baseURL + "/reiseloesung/orte?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newError(KindNetwork, errors.Wrap(err, "creating request"))
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var places []model.Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, newError(KindDecode, errors.Wrap(err, "parsing places"))
	}
	c.storePlaces(query, places)
	return places, nil
}

// TripsResult is one page of trip search results.
type TripsResult struct {
	Trips []model.Trip
	// References maps model.PageEarlier / model.PageLater to page tokens.
	References map[string]string
}

type discount struct {
	Kind  string `json:"art"`
	Class string `json:"klasse"`
}

type traveller struct {
	Type      string     `json:"typ"`
	Discounts []discount `json:"ermaessigungen"`
	Ages      []int      `json:"alter"`
	Count     int        `json:"anzahl"`
}

type tripRequest struct {
	Origin      string      `json:"abfahrtsHalt"`
	DateTime    string      `json:"anfrageZeitpunkt"`
	Destination string      `json:"ankunftsHalt"`
	Direction   string      `json:"ankunftSuche"`
	Class       string      `json:"klasse"`
	Products    []string    `json:"produktgattungen"`
	Travellers  []traveller `json:"reisende"`
	FastRoutes  bool        `json:"schnelleVerbindungen"`
	PagingRef   string      `json:"pagingReference,omitempty"`
}

var allProducts = []string{
	"ICE", "EC_IC", "IR", "REGIONAL", "SBAHN", "BUS", "SCHIFF", "UBAHN", "TRAM", "ANRUFPFLICHTIG",
}

func (c *Client) newTripRequest(s model.Search) tripRequest {
	direction := "ABFAHRT"
	if s.IsArrival {
		direction = "ANKUNFT"
	}
	return tripRequest{
		Origin:      s.OriginID,
		DateTime:    s.DateTime.In(c.loc).Format(timeLayout),
		Destination: s.DestinationID,
		Direction:   direction,
		Class:       "KLASSE_2",
		Products:    allProducts,
		Travellers: []traveller{{
			Type:      "ERWACHSENER",
			Discounts: []discount{{Kind: "KEINE_ERMAESSIGUNG", Class: "KLASSENLOS"}},
			Ages:      []int{},
			Count:     1,
		}},
		FastRoutes: true,
		PagingRef:  s.Paging,
	}
}

// SearchTrips runs a trip search. Connections that cannot be decoded are
// dropped and logged; only a malformed top-level document fails the call.
func (c *Client) SearchTrips(ctx context.Context, s model.Search) (*TripsResult, error) {
	payload, err := json.Marshal(c.newTripRequest(s))
	if err != nil {
		return nil, errors.Wrap(err, "encoding trip request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/angebote/fahrplan", bytes.NewReader(payload))
	if err != nil {
		return nil, newError(KindNetwork, errors.Wrap(err, "creating request"))
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept-Language", "de")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.decodeTrips(body)
}
