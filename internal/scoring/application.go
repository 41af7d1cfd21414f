package scoring

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ApplicationData is the partner application as submitted through the retail
// partner form. Every field is optional. Empty strings mean "not provided".
//
// The JSON shape matches the application_data JSONB column:
//
//	{
//	  "businessType": "Juice Bar",
//	  "estimatedMonthlyVolume": "1000_2500",
//	  "numberOfLocations": "2",
//	  "hasRefrigeration": true,
//	  "verificationDocuments": [{"name": "license.pdf"}]
//	}
type ApplicationData struct {
	BusinessType           string `json:"businessType,omitempty"`
	LegalBusinessName      string `json:"legalBusinessName,omitempty"`
	City                   string `json:"city,omitempty"`
	State                  string `json:"state,omitempty"`
	Country                string `json:"country,omitempty"`
	YearsInBusiness        string `json:"yearsInBusiness,omitempty"`
	EstimatedMonthlyVolume string `json:"estimatedMonthlyVolume,omitempty"`
	NumberOfLocations      string `json:"numberOfLocations,omitempty"`
	AverageFootTraffic     string `json:"averageFootTraffic,omitempty"`
	POSSystem              string `json:"posSystem,omitempty"`
	HasRefrigeration       *bool  `json:"hasRefrigeration,omitempty"`
	BusinessEmail          string `json:"businessEmail,omitempty"`
	DecisionMakerName      string `json:"decisionMakerName,omitempty"`
	DecisionMakerTitle     string `json:"decisionMakerTitle,omitempty"`
	Website                string `json:"website,omitempty"`
	InstagramHandle        string `json:"instagramHandle,omitempty"`

	// VerificationDocuments are opaque references; only the count is scored.
	VerificationDocuments []json.RawMessage `json:"verificationDocuments,omitempty"`
}

// UnmarshalJSON decodes field by field so that one badly typed value (a number
// where a string was expected, "yes" for a boolean) degrades that field to
// absent instead of rejecting the whole application.
func (a *ApplicationData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*a = ApplicationData{
		BusinessType:           looseString(raw["businessType"]),
		LegalBusinessName:      looseString(raw["legalBusinessName"]),
		City:                   looseString(raw["city"]),
		State:                  looseString(raw["state"]),
		Country:                looseString(raw["country"]),
		YearsInBusiness:        looseString(raw["yearsInBusiness"]),
		EstimatedMonthlyVolume: looseString(raw["estimatedMonthlyVolume"]),
		NumberOfLocations:      looseString(raw["numberOfLocations"]),
		AverageFootTraffic:     looseString(raw["averageFootTraffic"]),
		POSSystem:              looseString(raw["posSystem"]),
		HasRefrigeration:       looseBool(raw["hasRefrigeration"]),
		BusinessEmail:          looseString(raw["businessEmail"]),
		DecisionMakerName:      looseString(raw["decisionMakerName"]),
		DecisionMakerTitle:     looseString(raw["decisionMakerTitle"]),
		Website:                looseString(raw["website"]),
		InstagramHandle:        looseString(raw["instagramHandle"]),
	}

	if docs, ok := raw["verificationDocuments"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(docs, &list); err == nil {
			a.VerificationDocuments = list
		}
	}
	return nil
}

// DecodeApplication parses a raw application_data blob. It never fails: a
// NULL column, an empty blob, or anything that is not a JSON object yields the
// zero ApplicationData, which scores with the documented defaults.
func DecodeApplication(raw []byte) ApplicationData {
	var a ApplicationData
	if len(raw) == 0 {
		return a
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return ApplicationData{}
	}
	return a
}

// looseString accepts a JSON string or number. Anything else is absent.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// looseBool accepts true/false or their string spellings ("true", "yes", "1").
func looseBool(raw json.RawMessage) *bool {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		b = true
		return &b
	case "no", "n":
		return &b
	}
	if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return &parsed
	}
	return nil
}
