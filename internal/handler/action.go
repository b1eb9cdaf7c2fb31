package handler

// Action enumerates every operation the dispatch endpoint serves. Requests
// carry the action name as a form or query field; anything that does not
// parse into one of these constants is rejected before dispatch, so the
// gateway switch never sees a free-form string.
type Action string

const (
	// Public actions: reachable without a session.
	ActionLogin          Action = "login"
	ActionRegister       Action = "register"
	ActionForgotPassword Action = "forgot_password"
	ActionResetPassword  Action = "reset_password"

	// Authenticated actions.
	ActionLogout                  Action = "logout"
	ActionGetDropdowns            Action = "get_dropdowns"
	ActionGetTowns                Action = "get_towns"
	ActionGetPatients             Action = "get_patients"
	ActionGetPatient              Action = "get_patient"
	ActionAddPatient              Action = "add_patient"
	ActionUpdatePatient           Action = "update_patient"
	ActionDeletePatient           Action = "delete_patient"
	ActionGetMedications          Action = "get_medications"
	ActionGetMedication           Action = "get_medication"
	ActionAddMedication           Action = "add_medication"
	ActionUpdateMedication        Action = "update_medication"
	ActionDeleteMedication        Action = "delete_medication"
	ActionAutocompleteMedications Action = "autocomplete_medications"
)

var knownActions = map[Action]struct{}{
	ActionLogin:                   {},
	ActionRegister:                {},
	ActionForgotPassword:          {},
	ActionResetPassword:           {},
	ActionLogout:                  {},
	ActionGetDropdowns:            {},
	ActionGetTowns:                {},
	ActionGetPatients:             {},
	ActionGetPatient:              {},
	ActionAddPatient:              {},
	ActionUpdatePatient:           {},
	ActionDeletePatient:           {},
	ActionGetMedications:          {},
	ActionGetMedication:           {},
	ActionAddMedication:           {},
	ActionUpdateMedication:        {},
	ActionDeleteMedication:        {},
	ActionAutocompleteMedications: {},
}

func ParseAction(raw string) (Action, bool) {
	a := Action(raw)
	_, ok := knownActions[a]
	return a, ok
}

// Public reports whether the action may be invoked without a session.
func (a Action) Public() bool {
	switch a {
	case ActionLogin, ActionRegister, ActionForgotPassword, ActionResetPassword:
		return true
	}
	return false
}

// Mutating reports whether the action changes state. Mutating actions must
// arrive as POST and, once authenticated, must carry a valid CSRF token.
func (a Action) Mutating() bool {
	switch a {
	case ActionLogin, ActionRegister, ActionForgotPassword, ActionResetPassword,
		ActionLogout,
		ActionAddPatient, ActionUpdatePatient, ActionDeletePatient,
		ActionAddMedication, ActionUpdateMedication, ActionDeleteMedication:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}
