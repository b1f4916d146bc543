package leads

import (
	"encoding/json"
	"strings"
	"time"
)

// Allowed values for the source enum.
const (
	SourceWebsite     = "website"
	SourceFacebookAds = "facebook_ads"
	SourceGoogleAds   = "google_ads"
	SourceReferral    = "referral"
	SourceEvents      = "events"
	SourceOther       = "other"
)

// Allowed values for the status enum.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
	StatusWon       = "won"
)

var validSources = map[string]bool{
	SourceWebsite:     true,
	SourceFacebookAds: true,
	SourceGoogleAds:   true,
	SourceReferral:    true,
	SourceEvents:      true,
	SourceOther:       true,
}

var validStatuses = map[string]bool{
	StatusNew:       true,
	StatusContacted: true,
	StatusQualified: true,
	StatusLost:      true,
	StatusWon:       true,
}

// Lead represents a sales prospect record
type Lead struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Company        string     `json:"company"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	IsQualified    bool       `json:"is_qualified"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Company        string     `json:"company"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          *int       `json:"score"`
	LeadValue      *float64   `json:"lead_value"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	IsQualified    *bool      `json:"is_qualified"`
}

// Validate checks required fields, enum membership, and numeric ranges.
// It also normalizes string fields in place (trimming, lowercased email).
func (r *CreateLeadRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Company = strings.TrimSpace(r.Company)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Source = strings.TrimSpace(r.Source)
	r.Status = strings.TrimSpace(r.Status)

	for _, v := range []string{
		r.FirstName, r.LastName, r.Email, r.Phone,
		r.Company, r.City, r.State, r.Source, r.Status,
	} {
		if v == "" {
			return ErrMissingFields
		}
	}
	if r.LeadValue == nil {
		return ErrMissingFields
	}
	if !validSources[r.Source] {
		return ErrInvalidSource
	}
	if !validStatuses[r.Status] {
		return ErrInvalidStatus
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 100) {
		return ErrScoreOutOfRange
	}
	if *r.LeadValue < 0 {
		return ErrNegativeLeadValue
	}
	return nil
}

// newLead builds a Lead from a validated create request, applying defaults.
func (r *CreateLeadRequest) newLead(id string, now time.Time) *Lead {
	l := &Lead{
		ID:             id,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Company:        r.Company,
		City:           r.City,
		State:          r.State,
		Source:         r.Source,
		Status:         r.Status,
		LeadValue:      *r.LeadValue,
		LastActivityAt: r.LastActivityAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.Score != nil {
		l.Score = *r.Score
	}
	if r.IsQualified != nil {
		l.IsQualified = *r.IsQualified
	}
	return l
}

// updatableFields is the whitelist of fields eligible for partial update.
// Everything except id, created_at and updated_at.
var updatableFields = []string{
	"first_name",
	"last_name",
	"email",
	"phone",
	"company",
	"city",
	"state",
	"source",
	"status",
	"score",
	"lead_value",
	"last_activity_at",
	"is_qualified",
}

// UpdateLeadRequest holds the whitelisted subset of a PATCH payload.
// Unknown fields are dropped on decode; explicit nulls count as present.
type UpdateLeadRequest struct {
	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps only whitelisted fields from the raw payload.
func (u *UpdateLeadRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.fields = make(map[string]json.RawMessage)
	for _, f := range updatableFields {
		if v, ok := raw[f]; ok {
			u.fields[f] = v
		}
	}
	return nil
}

// Empty reports whether no whitelisted field was present in the payload.
func (u *UpdateLeadRequest) Empty() bool {
	return len(u.fields) == 0
}

// Has reports whether the payload included the given field.
func (u *UpdateLeadRequest) Has(field string) bool {
	_, ok := u.fields[field]
	return ok
}

// apply mutates l with the payload's fields, enforcing the same
// field-level validation as creation. It does not touch updated_at;
// the repository refreshes that on a successful write.
func (u *UpdateLeadRequest) apply(l *Lead) error {
	setString := func(field string, dst *string, lower bool) error {
		raw, ok := u.fields[field]
		if !ok {
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ErrInvalidField
		}
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" {
			return ErrMissingFields
		}
		*dst = s
		return nil
	}

	if err := setString("first_name", &l.FirstName, false); err != nil {
		return err
	}
	if err := setString("last_name", &l.LastName, false); err != nil {
		return err
	}
	if err := setString("email", &l.Email, true); err != nil {
		return err
	}
	if err := setString("phone", &l.Phone, false); err != nil {
		return err
	}
	if err := setString("company", &l.Company, false); err != nil {
		return err
	}
	if err := setString("city", &l.City, false); err != nil {
		return err
	}
	if err := setString("state", &l.State, false); err != nil {
		return err
	}
	if err := setString("source", &l.Source, false); err != nil {
		return err
	}
	if !validSources[l.Source] {
		return ErrInvalidSource
	}
	if err := setString("status", &l.Status, false); err != nil {
		return err
	}
	if !validStatuses[l.Status] {
		return ErrInvalidStatus
	}

	if raw, ok := u.fields["score"]; ok {
		var score int
		if err := json.Unmarshal(raw, &score); err != nil {
			return ErrInvalidField
		}
		if score < 0 || score > 100 {
			return ErrScoreOutOfRange
		}
		l.Score = score
	}
	if raw, ok := u.fields["lead_value"]; ok {
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return ErrInvalidField
		}
		if v < 0 {
			return ErrNegativeLeadValue
		}
		l.LeadValue = v
	}
	if raw, ok := u.fields["last_activity_at"]; ok {
		var t *time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return ErrInvalidField
		}
		l.LastActivityAt = t
	}
	if raw, ok := u.fields["is_qualified"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ErrInvalidField
		}
		l.IsQualified = b
	}
	return nil
}
