package domain

import "fmt"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestPending, RequestFulfilled:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

type BloodRequest struct {
	ID          string        `json:"id"`
	PatientName string        `json:"patient_name"`
	BloodGroup  BloodGroup    `json:"blood_group"`
	Units       int64         `json:"units"`
	Status      RequestStatus `json:"status"`
	RequestDate string        `json:"request_date"`
}
