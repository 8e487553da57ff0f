package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	minNameLength    = 2
	minContactLength = 5
)

// ValidationError reports a rejected input field before it reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// DonorInput is the donor form as submitted by a client.
type DonorInput struct {
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	BloodGroup string `json:"blood_group"`
}

// Normalize trims the input and checks it, returning the parsed blood group.
func (in *DonorInput) Normalize() (BloodGroup, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	if utf8.RuneCountInString(in.Name) < minNameLength {
		return "", &ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(in.Contact) < minContactLength {
		return "", &ValidationError{Field: "contact", Message: "contact information is required"}
	}
	group, err := ParseBloodGroup(in.BloodGroup)
	if err != nil {
		return "", &ValidationError{Field: "blood_group", Message: err.Error()}
	}
	return group, nil
}

// RequestInput is the blood request form as submitted by a client.
type RequestInput struct {
	PatientName string `json:"patient_name"`
	BloodGroup  string `json:"blood_group"`
	Units       int64  `json:"units"`
}

func (in *RequestInput) Normalize() (BloodGroup, error) {
	in.PatientName = strings.TrimSpace(in.PatientName)
	if utf8.RuneCountInString(in.PatientName) < minNameLength {
		return "", &ValidationError{Field: "patient_name", Message: "name must be at least 2 characters"}
	}
	if in.Units < 1 {
		return "", &ValidationError{Field: "units", Message: "at least 1 unit must be requested"}
	}
	group, err := ParseBloodGroup(in.BloodGroup)
	if err != nil {
		return "", &ValidationError{Field: "blood_group", Message: err.Error()}
	}
	return group, nil
}
