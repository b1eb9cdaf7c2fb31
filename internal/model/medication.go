package model

import "time"

type Medication struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	Name       string    `json:"name"`
	SystemDate string    `json:"system_date"`
	Remarks    string    `json:"remarks"`
	CreatedAt  time.Time `json:"created_at"`

	// Resolved via joins for listing views.
	PatientNumber  string `json:"patient_number,omitempty"`
	PatientName    string `json:"patient_name,omitempty"`
	PatientSurname string `json:"patient_surname,omitempty"`
	PrescribedBy   string `json:"prescribed_by,omitempty"`
}
