package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Durable storage keys.
const (
	KeyToken       = "token"
	KeyUser        = "user"
	ImageKeyPrefix = "movieImage_"
)

// ImageKey returns the storage key of the local-only image for a record.
func ImageKey(id ID) string {
	return ImageKeyPrefix + id.String()
}

// ID is a server-assigned identifier. The backend may send it as a JSON number or string.
type ID string

// String returns the identifier as text.
func (id ID) String() string { return string(id) }

// Truthy reports whether the id would count as set: non-empty and not zero.
func (id ID) Truthy() bool {
	return id != "" && id != "0"
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a number or string: %w", err)
		}
		*id = ID(normalizeNumber(n))
		return nil
	}
}

// normalizeNumber writes integral numbers such as 7.0 or 7e0 as "7" so they
// compare equal to ids taken from paths.
func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// MarshalJSON writes integer ids as numbers so they round-trip to the backend unchanged.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is the authenticated user profile.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session pairs a user with its bearer token.
//
// Token is non-empty iff User is non-nil.
type Session struct {
	User  *User
	Token string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// AuthResult is the response body of the login and signup endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Validate checks that the backend returned a usable session.
func (a *AuthResult) Validate() error {
	if a == nil || a.Token == "" {
		return fmt.Errorf("response is missing a token")
	}
	if a.User == nil || !a.User.ID.Truthy() {
		return fmt.Errorf("response is missing a user id")
	}
	return nil
}

// MovieType distinguishes movies from TV shows.
type MovieType string

const (
	TypeMovie  MovieType = "Movie"
	TypeTVShow MovieType = "TV Show"
)

// MovieTypes lists the selectable record types in display order.
var MovieTypes = []MovieType{TypeMovie, TypeTVShow}

// ParseMovieType parses user input such as "movie", "tv", "tvshow" or "TV Show".
func ParseMovieType(s string) (MovieType, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), "")) {
	case "movie", "film":
		return TypeMovie, nil
	case "tv", "tvshow", "show", "series":
		return TypeTVShow, nil
	default:
		return "", fmt.Errorf("unknown type %q (want %q or %q)", s, TypeMovie, TypeTVShow)
	}
}

// Valid reports whether t is one of the known types.
func (t MovieType) Valid() bool {
	return t == TypeMovie || t == TypeTVShow
}

// Movie is a catalog record as returned by the backend.
//
// Budget, Location, Duration and Year are free text.
type Movie struct {
	ID       ID        `json:"id"`
	Title    string    `json:"title"`
	Type     MovieType `json:"type"`
	Director string    `json:"director"`
	Budget   string    `json:"budget"`
	Location string    `json:"location"`
	Duration string    `json:"duration"`
	Year     string    `json:"year"`
	Image    string    `json:"image,omitempty"`
}

// Fields returns the textual payload of the record.
func (m Movie) Fields() MovieFields {
	return MovieFields{
		Title:    m.Title,
		Type:     m.Type,
		Director: m.Director,
		Budget:   m.Budget,
		Location: m.Location,
		Duration: m.Duration,
		Year:     m.Year,
	}
}

// MovieFields holds the textual fields sent on create and update.
type MovieFields struct {
	Title    string    `json:"title"`
	Type     MovieType `json:"type"`
	Director string    `json:"director"`
	Budget   string    `json:"budget"`
	Location string    `json:"location"`
	Duration string    `json:"duration"`
	Year     string    `json:"year"`
}

// Field names accepted by [MovieFields.Set].
const (
	FieldTitle    = "title"
	FieldType     = "type"
	FieldDirector = "director"
	FieldBudget   = "budget"
	FieldLocation = "location"
	FieldDuration = "duration"
	FieldYear     = "year"
)

// FieldNames lists the form fields in display order.
var FieldNames = []string{FieldTitle, FieldType, FieldDirector, FieldBudget, FieldLocation, FieldDuration, FieldYear}

// NewMovieFields returns an empty form with the default type.
func NewMovieFields() MovieFields {
	return MovieFields{Type: TypeMovie}
}

// Get returns the value of the named field.
func (f MovieFields) Get(name string) (string, error) {
	switch name {
	case FieldTitle:
		return f.Title, nil
	case FieldType:
		return string(f.Type), nil
	case FieldDirector:
		return f.Director, nil
	case FieldBudget:
		return f.Budget, nil
	case FieldLocation:
		return f.Location, nil
	case FieldDuration:
		return f.Duration, nil
	case FieldYear:
		return f.Year, nil
	default:
		return "", fmt.Errorf("unknown field %q", name)
	}
}

// Set assigns the named field. The type field accepts anything [ParseMovieType] does.
func (f *MovieFields) Set(name, value string) error {
	switch name {
	case FieldTitle:
		f.Title = value
	case FieldType:
		t, err := ParseMovieType(value)
		if err != nil {
			return err
		}
		f.Type = t
	case FieldDirector:
		f.Director = value
	case FieldBudget:
		f.Budget = value
	case FieldLocation:
		f.Location = value
	case FieldDuration:
		f.Duration = value
	case FieldYear:
		f.Year = value
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// Validate requires every field and a known type.
func (f MovieFields) Validate() error {
	for _, name := range FieldNames {
		v, _ := f.Get(name)
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if !f.Type.Valid() {
		return fmt.Errorf("unknown type %q", f.Type)
	}
	return nil
}

// ListQuery drives a paginated, searchable list fetch.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}

// WithSearch returns the query for a new search term, reset to the first page.
func (q ListQuery) WithSearch(term string) ListQuery {
	q.Search = term
	q.Page = 1
	return q
}

// Next returns the query for the following page.
func (q ListQuery) Next() ListQuery {
	q.Page++
	return q
}

// Values encodes the query as page, limit and search parameters.
func (q ListQuery) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(q.PageSize))
	v.Set("search", q.Search)
	return v
}
