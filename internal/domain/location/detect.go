// internal/domain/location/detect.go
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Detection sources
const (
	SourceManual         = "manual"
	SourceReverseGeocode = "reverse_geocode"
	SourceIP             = "ip"
)

// DetectRequest carries whatever hints the client could gather
type DetectRequest struct {
	Region    string   `json:"region"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IP        string   `json:"-"`
}

// Detection is a resolved department, with the city reported by the lookup
type Detection struct {
	Department Department `json:"department"`
	City       string     `json:"city"`
	Source     string     `json:"source"`
}

// Detector resolves a shopper's department from best-effort third-party
// lookups. Lookup failures are logged and never returned.
type Detector struct {
	table             *Table
	client            *http.Client
	ipLookupURL       string
	reverseGeocodeURL string
	logger            *logrus.Logger
}

// NewDetector creates a detector
func NewDetector(table *Table, client *http.Client, ipLookupURL, reverseGeocodeURL string, timeout time.Duration, logger *logrus.Logger) *Detector {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Detector{
		table:             table,
		client:            client,
		ipLookupURL:       strings.TrimRight(ipLookupURL, "/"),
		reverseGeocodeURL: reverseGeocodeURL,
		logger:            logger,
	}
}

type lookupResult struct {
	countryCode string
	city        string
	region      string
}

// Detect resolves the department. An explicit region wins; otherwise reverse
// geocoding and IP lookup run concurrently and reverse geocoding is preferred.
func (d *Detector) Detect(ctx context.Context, req DetectRequest) (*Detection, bool) {
	if strings.TrimSpace(req.Region) != "" {
		dept, ok := d.table.FindDepartmentByRegion(req.Region)
		if !ok {
			return nil, false
		}
		return &Detection{Department: dept, City: req.City, Source: SourceManual}, true
	}

	var geo, ip *lookupResult
	g, gctx := errgroup.WithContext(ctx)

	if req.Latitude != nil && req.Longitude != nil {
		lat, lng := *req.Latitude, *req.Longitude
		g.Go(func() error {
			res, err := d.reverseGeocode(gctx, lat, lng)
			if err != nil {
				d.logger.WithError(err).Warn("Reverse geocoding failed")
				return nil
			}
			geo = res
			return nil
		})
	}

	if isPublicIP(req.IP) {
		addr := req.IP
		g.Go(func() error {
			res, err := d.lookupIP(gctx, addr)
			if err != nil {
				d.logger.WithError(err).Warn("IP location detection failed")
				return nil
			}
			ip = res
			return nil
		})
	}

	_ = g.Wait()

	if det, ok := d.resolve(geo, SourceReverseGeocode); ok {
		return det, true
	}
	return d.resolve(ip, SourceIP)
}

func (d *Detector) resolve(res *lookupResult, source string) (*Detection, bool) {
	if res == nil || res.countryCode != "CO" {
		return nil, false
	}
	dept, ok := d.table.FindDepartmentByRegion(res.region)
	if !ok {
		return nil, false
	}
	return &Detection{Department: dept, City: res.city, Source: source}, true
}

func (d *Detector) lookupIP(ctx context.Context, ip string) (*lookupResult, error) {
	var body struct {
		CountryCode string `json:"country_code"`
		City        string `json:"city"`
		Region      string `json:"region"`
	}
	endpoint := fmt.Sprintf("%s/%s/json/", d.ipLookupURL, url.PathEscape(ip))
	if err := d.getJSON(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	return &lookupResult{countryCode: body.CountryCode, city: body.City, region: body.Region}, nil
}

func (d *Detector) reverseGeocode(ctx context.Context, lat, lng float64) (*lookupResult, error) {
	u, err := url.Parse(d.reverseGeocodeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid reverse geocode URL: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("localityLanguage", "es")
	u.RawQuery = q.Encode()

	var body struct {
		CountryCode          string `json:"countryCode"`
		Locality             string `json:"locality"`
		PrincipalSubdivision string `json:"principalSubdivision"`
	}
	if err := d.getJSON(ctx, u.String(), &body); err != nil {
		return nil, err
	}
	return &lookupResult{countryCode: body.CountryCode, city: body.Locality, region: body.PrincipalSubdivision}, nil
}

func (d *Detector) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func isPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() && !ip.IsLinkLocalUnicast()
}

// Tracker keeps the latest detection per session. Each lookup takes a
// generation number when it starts; a result is stored only if no newer
// lookup started for the same session in the meantime.
type Tracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*trackedEntry
}

type trackedEntry struct {
	generation uint64
	detection  *Detection
	touched    time.Time
}

// NewTracker creates a tracker that forgets sessions idle for longer than ttl
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{ttl: ttl, now: time.Now, entries: map[string]*trackedEntry{}}
}

// Begin starts a lookup for the session and returns its generation
func (t *Tracker) Begin(session string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune()
	e, ok := t.entries[session]
	if !ok {
		e = &trackedEntry{}
		t.entries[session] = e
	}
	e.generation++
	e.touched = t.now()
	return e.generation
}

// Commit stores the result unless a newer lookup superseded it
func (t *Tracker) Commit(session string, generation uint64, d *Detection) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[session]
	if !ok || e.generation != generation {
		return false
	}
	e.detection = d
	e.touched = t.now()
	return true
}

// Current returns the stored detection for the session
func (t *Tracker) Current(session string) (*Detection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[session]
	if !ok || e.detection == nil {
		return nil, false
	}
	return e.detection, true
}

func (t *Tracker) prune() {
	cutoff := t.now().Add(-t.ttl)
	for k, e := range t.entries {
		if e.touched.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}
