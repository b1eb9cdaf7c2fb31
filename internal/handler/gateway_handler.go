package handler

import (
	"net/http"
	"time"

	"medrecord/internal/dedup"
	"medrecord/internal/middleware"
	"medrecord/internal/model"
	"medrecord/internal/ratelimit"
	"medrecord/internal/service"
	"medrecord/internal/session"
)

// RateLimits carries the per-action attempt budgets enforced before any
// credential work happens.
type RateLimits struct {
	LoginMax       int
	LoginWindow    time.Duration
	RegisterMax    int
	RegisterWindow time.Duration
	ResetMax       int
	ResetWindow    time.Duration
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		LoginMax:       5,
		LoginWindow:    5 * time.Minute,
		RegisterMax:    3,
		RegisterWindow: 10 * time.Minute,
		ResetMax:       5,
		ResetWindow:    10 * time.Minute,
	}
}

// Gateway is the single dispatch endpoint. Every request names an action and
// the gateway walks it through the same ladder: parse, method check, rate
// limit, session, CSRF, role, then the service call.
type Gateway struct {
	auth        *service.AuthService
	resets      *service.PasswordResetService
	patients    *service.PatientService
	medications *service.MedicationService
	sessions    *session.Manager
	limiter     *ratelimit.Limiter
	dedup       *dedup.Deduplicator
	limits      RateLimits
}

func NewGateway(
	auth *service.AuthService,
	resets *service.PasswordResetService,
	patients *service.PatientService,
	medications *service.MedicationService,
	sessions *session.Manager,
	limiter *ratelimit.Limiter,
	dedup *dedup.Deduplicator,
	limits RateLimits,
) *Gateway {
	if limits.LoginMax <= 0 {
		limits = DefaultRateLimits()
	}

	return &Gateway{
		auth:        auth,
		resets:      resets,
		patients:    patients,
		medications: medications,
		sessions:    sessions,
		limiter:     limiter,
		dedup:       dedup,
		limits:      limits,
	}
}

// Dispatch routes a request by its action field.
func (g *Gateway) Dispatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Success: false, Code: "VALIDATION", Message: "Malformed request body",
		})
		return
	}

	raw := r.FormValue("action")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Success: false, Code: "VALIDATION", Message: "No action specified",
		})
		return
	}

	action, known := ParseAction(raw)
	if !known {
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Success: false, Code: "VALIDATION", Message: "Invalid action",
		})
		return
	}

	if action.Mutating() && r.Method != http.MethodPost {
		writeJSON(w, http.StatusBadRequest, model.Envelope{
			Success: false, Code: "VALIDATION", Message: "Invalid request method",
		})
		return
	}

	if action.Public() {
		g.dispatchPublic(w, r, action)
		return
	}

	sess, ok := g.sessions.Get(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.Envelope{
			Success: false, Code: "UNAUTHORIZED", Message: "Unauthorized. Please log in.",
		})
		return
	}

	// State-changing actions must prove the request originated from the page
	// that holds the session's token.
	if action.Mutating() && !sess.VerifyCSRF(r.FormValue("csrf_token")) {
		writeJSON(w, http.StatusForbidden, model.Envelope{
			Success: false, Code: "CSRF_FORBIDDEN", Message: "Invalid CSRF token",
		})
		return
	}

	if medicationWrite(action) && !canPrescribe(sess.Role) {
		writeJSON(w, http.StatusForbidden, model.Envelope{
			Success: false, Code: "FORBIDDEN", Message: "You do not have permission to prescribe medications",
		})
		return
	}

	g.dispatchAuthenticated(w, r, action, sess)
}

func medicationWrite(a Action) bool {
	switch a {
	case ActionAddMedication, ActionUpdateMedication, ActionDeleteMedication:
		return true
	}
	return false
}

func canPrescribe(role string) bool {
	return role == model.RoleDoctor || role == model.RoleNurse
}

func (g *Gateway) dispatchPublic(w http.ResponseWriter, r *http.Request, action Action) {
	switch action {
	case ActionLogin:
		g.handleLogin(w, r)
	case ActionRegister:
		g.handleRegister(w, r)
	case ActionForgotPassword:
		g.handleForgotPassword(w, r)
	case ActionResetPassword:
		g.handleResetPassword(w, r)
	}
}

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	clientKey := middleware.ClientIP(r)
	if !g.limiter.Allow(ActionLogin.String(), clientKey, g.limits.LoginMax, g.limits.LoginWindow) {
		writeJSON(w, http.StatusTooManyRequests, model.Envelope{
			Success: false, Code: "RATE_LIMITED",
			Message: "Too many login attempts. Please try again in 5 minutes.",
		})
		return
	}

	user, err := g.auth.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := g.sessions.Create(w, r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	// A legitimate user starts the next window with a clean slate.
	g.limiter.Reset(ActionLogin.String(), clientKey)

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Envelope:  model.OK("Login successful"),
		CSRFToken: sess.CSRFToken,
		User:      user,
	})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !g.limiter.Allow(ActionRegister.String(), middleware.ClientIP(r), g.limits.RegisterMax, g.limits.RegisterWindow) {
		writeJSON(w, http.StatusTooManyRequests, model.Envelope{
			Success: false, Code: "RATE_LIMITED",
			Message: "Too many registration attempts. Please try again in 10 minutes.",
		})
		return
	}

	username := r.FormValue("username")
	if g.dedup.ShouldReject(ActionRegister.String(), username) {
		writeJSON(w, http.StatusTooManyRequests, model.Envelope{
			Success: false, Code: "RATE_LIMITED", Message: "Please wait before trying again.",
		})
		return
	}

	user, err := g.auth.Register(r.Context(), username, r.FormValue("password"), r.FormValue("confirm_password"), r.FormValue("role"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Recorded only after success so a corrected resubmission is never
	// mistaken for a double-fire.
	g.dedup.Record(ActionRegister.String(), username)

	writeJSON(w, http.StatusOK, model.RegisterResponse{
		Envelope: model.OK("Account created successfully!"),
		User:     user,
	})
}

func (g *Gateway) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !g.limiter.Allow(ActionForgotPassword.String(), middleware.ClientIP(r), g.limits.ResetMax, g.limits.ResetWindow) {
		writeJSON(w, http.StatusTooManyRequests, model.Envelope{
			Success: false, Code: "RATE_LIMITED", Message: "Too many attempts. Please try again later.",
		})
		return
	}

	token, err := g.resets.Request(r.Context(), r.FormValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TokenResponse{
		Envelope: model.OK("Password reset token generated successfully!"),
		Token:    token,
	})
}

func (g *Gateway) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !g.limiter.Allow(ActionResetPassword.String(), middleware.ClientIP(r), g.limits.ResetMax, g.limits.ResetWindow) {
		writeJSON(w, http.StatusTooManyRequests, model.Envelope{
			Success: false, Code: "RATE_LIMITED", Message: "Too many attempts. Please try again later.",
		})
		return
	}

	err := g.resets.Redeem(
		r.Context(),
		r.FormValue("username"),
		r.FormValue("token"),
		r.FormValue("new_password"),
		r.FormValue("confirm_password"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.OK("Password reset successfully! You can now login."))
}

func (g *Gateway) dispatchAuthenticated(w http.ResponseWriter, r *http.Request, action Action, sess session.Session) {
	ctx := r.Context()

	switch action {
	case ActionLogout:
		g.sessions.Destroy(w, r)
		writeJSON(w, http.StatusOK, model.OK("Logged out"))

	case ActionGetDropdowns:
		countries, genders, patients, err := g.patients.Dropdowns(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.DropdownsResponse{
			Envelope:  model.OK(""),
			Countries: countries,
			Genders:   genders,
			Patients:  patients,
		})

	case ActionGetTowns:
		towns, err := g.patients.Towns(ctx, r.FormValue("country_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.TownsResponse{Envelope: model.OK(""), Towns: towns})

	case ActionGetPatients:
		patients, err := g.patients.List(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.PatientsResponse{Envelope: model.OK(""), Patients: patients})

	case ActionGetPatient:
		patient, err := g.patients.Get(ctx, r.FormValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.PatientResponse{Envelope: model.OK(""), Patient: patient})

	case ActionAddPatient:
		patient, err := g.patients.Create(ctx, patientInput(r), sess.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.CreatedResponse{
			Envelope: model.OK("Patient added successfully"),
			ID:       patient.ID,
		})

	case ActionUpdatePatient:
		if err := g.patients.Update(ctx, r.FormValue("id"), patientInput(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.OK("Patient updated successfully"))

	case ActionDeletePatient:
		if err := g.patients.Delete(ctx, r.FormValue("id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.OK("Patient deleted successfully"))

	case ActionGetMedications:
		medications, err := g.medications.List(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.MedicationsResponse{Envelope: model.OK(""), Medications: medications})

	case ActionGetMedication:
		medication, err := g.medications.Get(ctx, r.FormValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.MedicationResponse{Envelope: model.OK(""), Medication: medication})

	case ActionAddMedication:
		medication, err := g.medications.Create(ctx, medicationInput(r), sess.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.CreatedResponse{
			Envelope: model.OK("Medication added successfully"),
			ID:       medication.ID,
		})

	case ActionUpdateMedication:
		if err := g.medications.Update(ctx, r.FormValue("id"), medicationInput(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.OK("Medication updated successfully"))

	case ActionDeleteMedication:
		if err := g.medications.Delete(ctx, r.FormValue("id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.OK("Medication deleted successfully"))

	case ActionAutocompleteMedications:
		suggestions, err := g.medications.Autocomplete(ctx, r.FormValue("term"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.AutocompleteResponse{Envelope: model.OK(""), Suggestions: suggestions})
	}
}

func patientInput(r *http.Request) service.PatientInput {
	return service.PatientInput{
		Number:    r.FormValue("patient_number"),
		Name:      r.FormValue("name"),
		Surname:   r.FormValue("surname"),
		DOB:       r.FormValue("dob"),
		Address1:  r.FormValue("address1"),
		Address2:  r.FormValue("address2"),
		Address3:  r.FormValue("address3"),
		TownID:    r.FormValue("town_id"),
		CountryID: r.FormValue("country_id"),
		GenderID:  r.FormValue("gender_id"),
	}
}

func medicationInput(r *http.Request) service.MedicationInput {
	return service.MedicationInput{
		PatientID:  r.FormValue("patient_id"),
		Name:       r.FormValue("name"),
		SystemDate: r.FormValue("system_date"),
		Remarks:    r.FormValue("remarks"),
	}
}
