package fulfillmentlocation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Location is a fulfillment location as returned by the service. Fields the
// client does not model are kept in Extra and written back by MarshalJSON,
// so a decoded location re-encodes to the payload the service sent.
type Location struct {
	FulfillmentLocationID         string `json:"fulfillmentLocationId" yaml:"fulfillmentLocationId"`
	InternalFulfillmentLocationID int    `json:"internalFulfillmentLocationId" yaml:"internalFulfillmentLocationId"`
	FulfillerID                   string `json:"fulfillerId" yaml:"fulfillerId"`
	InternalFulfillerID           int    `json:"internalFulfillerId" yaml:"internalFulfillerId"`
	Name                          string `json:"name,omitempty" yaml:"name,omitempty"`
	TimeZone                      string `json:"timeZone" yaml:"timeZone"`
	Archived                      bool   `json:"archived,omitempty" yaml:"archived,omitempty"`

	// Extra holds the fields of the service payload not listed above, keyed
	// by their JSON name. Nil when there are none.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// locationFields has the fields of Location without its JSON methods.
type locationFields Location

var modelledFields = []string{
	"fulfillmentLocationId",
	"internalFulfillmentLocationId",
	"fulfillerId",
	"internalFulfillerId",
	"name",
	"timeZone",
	"archived",
}

// UnmarshalJSON decodes a service payload. The internal identifiers are
// accepted as JSON numbers or as numeric strings.
func (l *Location) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := struct {
		*locationFields
		InternalFulfillmentLocationID lenientInt `json:"internalFulfillmentLocationId"`
		InternalFulfillerID           lenientInt `json:"internalFulfillerId"`
	}{
		locationFields: &locationFields{},
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*l = Location(*decoded.locationFields)
	l.InternalFulfillmentLocationID = int(decoded.InternalFulfillmentLocationID)
	l.InternalFulfillerID = int(decoded.InternalFulfillerID)

	for name, value := range raw {
		if slices.Contains(modelledFields, name) {
			continue
		}
		if l.Extra == nil {
			l.Extra = make(map[string]json.RawMessage)
		}
		l.Extra[name] = value
	}

	return nil
}

// MarshalJSON encodes the modelled fields followed by Extra in key order.
func (l Location) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(locationFields(l))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(l.Extra))
	for name := range l.Extra {
		if !slices.Contains(modelledFields, name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return known, nil
	}
	slices.Sort(names)

	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(l.Extra[name])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// lenientInt decodes an integer sent either as a number or a numeric string.
type lenientInt int

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}

	v, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("identifier %s is not an integer", data)
	}
	*n = lenientInt(v)

	return nil
}

// Matches reports whether id is either the alphanumeric or the internal
// numeric identifier of the location.
func (l Location) Matches(id string) bool {
	if id == "" {
		return false
	}
	if l.FulfillmentLocationID == id {
		return true
	}
	return strconv.Itoa(l.InternalFulfillmentLocationID) == id
}

// FindLocation returns the first location identified by id, matching either
// identifier. The returned error is classified as ErrNotFound when nothing
// matches.
func FindLocation(locations []Location, id string) (Location, error) {
	for _, l := range locations {
		if l.Matches(id) {
			return l, nil
		}
	}

	return Location{}, &Error{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Location '%s' not found", id),
		kind:    ErrNotFound,
	}
}
