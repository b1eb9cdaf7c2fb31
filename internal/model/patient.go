package model

import "time"

type Patient struct {
	ID        string    `json:"id"`
	Number    string    `json:"patient_number,omitempty"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	DOB       string    `json:"dob,omitempty"`
	Address1  string    `json:"address1,omitempty"`
	Address2  string    `json:"address2,omitempty"`
	Address3  string    `json:"address3,omitempty"`
	TownID    string    `json:"town_id"`
	CountryID string    `json:"country_id"`
	GenderID  string    `json:"gender_id"`
	CreatedAt time.Time `json:"created_at"`

	// Resolved names from the lookup joins; empty on bare fetches.
	Country   string `json:"country,omitempty"`
	Town      string `json:"town,omitempty"`
	Gender    string `json:"gender,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// PatientOption is the compact form used to populate selection dropdowns.
type PatientOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}
