package model

// Lookup rows back the form dropdowns. Rows with in_use = false stay in the
// table for referential integrity but are not offered for new records.

type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Town struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Gender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
