package model

import "time"

// Contact is one person from an uploaded export. It is created once at ingest
// and never mutated afterwards.
type Contact struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Label       string     `json:"label"`
	Company     string     `json:"company,omitempty"`
	Position    string     `json:"position,omitempty"`
	Location    string     `json:"location,omitempty"`
	School      string     `json:"school,omitempty"`
	Email       string     `json:"email,omitempty"`
	ConnectedOn *time.Time `json:"connected_on,omitempty"`
}

// HasAttributes reports whether the contact carries at least one attribute
// usable for edge inference.
func (c Contact) HasAttributes() bool {
	return c.Company != "" || c.Position != "" || c.Location != "" || c.School != ""
}

// Attribute returns the raw value of a named inference attribute.
func (c Contact) Attribute(name string) string {
	switch name {
	case AttrCompany:
		return c.Company
	case AttrSchool:
		return c.School
	case AttrLocation:
		return c.Location
	case AttrPosition:
		return c.Position
	}
	return ""
}

// NodeView is a contact decorated with the metrics the presentation layer shows.
type NodeView struct {
	Contact
	Degree      int     `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Community   int     `json:"community"`
}
