package model

// Envelope is the flat response shape every action returns:
// {"success": bool, "message": string, ...action-specific fields}.
// Action responses embed it so the extra fields sit at the top level.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func OK(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

type LoginResponse struct {
	Envelope
	CSRFToken string   `json:"csrf_token"`
	User      AuthUser `json:"user"`
}

type RegisterResponse struct {
	Envelope
	User AuthUser `json:"user"`
}

// TokenResponse carries the reset token back to the caller. The original
// system surfaces the token in the response instead of mailing it.
type TokenResponse struct {
	Envelope
	Token string `json:"token"`
}

type DropdownsResponse struct {
	Envelope
	Countries []Country       `json:"countries"`
	Genders   []Gender        `json:"genders"`
	Patients  []PatientOption `json:"patients"`
}

type TownsResponse struct {
	Envelope
	Towns []Town `json:"towns"`
}

type PatientsResponse struct {
	Envelope
	Patients []Patient `json:"patients"`
}

type PatientResponse struct {
	Envelope
	Patient Patient `json:"patient"`
}

type MedicationsResponse struct {
	Envelope
	Medications []Medication `json:"medications"`
}

type MedicationResponse struct {
	Envelope
	Medication Medication `json:"medication"`
}

type CreatedResponse struct {
	Envelope
	ID string `json:"id"`
}

type AutocompleteResponse struct {
	Envelope
	Suggestions []string `json:"suggestions"`
}
