package model

import "time"

// RootShortID marks access-log entries for the service root rather than a
// short URL document.
const RootShortID = "root"

// Location is the optional geolocation attached to an access-log entry.
type Location struct {
	Country   string `json:"country"`
	Continent string `json:"continent"`
	Region    string `json:"region"`
	City      string `json:"city"`
}

// AccessLog is one recorded access of a short path (or the root). The IP is
// anonymized before the entry is persisted. QueryStrings keeps the request's
// query parameters as an ordered list of single-key records, nil when the
// request carried none. User is attached post-hoc after a successful login.
type AccessLog struct {
	ID           string              `json:"id"`
	Path         string              `json:"path"`
	Destination  string              `json:"dest,omitempty"`
	Origin       string              `json:"origin,omitempty"`
	IP           string              `json:"ip,omitempty"`
	NotFound     bool                `json:"notFound"`
	User         string              `json:"user,omitempty"`
	QueryStrings []map[string]string `json:"queryStrings"`
	UserAgent    string              `json:"userAgent,omitempty"`
	ShortID      string              `json:"shortId"`
	Location     *Location           `json:"location"`
	LoggedAt     time.Time           `json:"loggedAt"`
}
