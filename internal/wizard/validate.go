package wizard

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateStep checks the fields a step must have before Next may advance.
// Failures are returned as field-keyed messages, never as errors.
func validateStep(st State) map[string]string {
	fieldErrors := make(map[string]string)

	switch st.CurrentStep {
	case StepSport:
		if strings.TrimSpace(st.SelectedSport) == "" {
			fieldErrors["sport"] = "Please select a sport"
		}
	case StepCalendar:
		if st.SelectedDate == nil {
			fieldErrors["date"] = "Please pick a trial date"
		} else if st.SelectedDate.Before(startOfToday()) {
			fieldErrors["date"] = "Trial date cannot be in the past"
		}
	case StepAuth:
		if !st.IsAuthenticated {
			fieldErrors["auth"] = "Please verify your phone number"
		}
	case StepDetails:
		for field, msg := range ValidateDetails(st.UserDetails) {
			fieldErrors[field] = msg
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// ValidateDetails checks the details-step fields. Shared with the booking
// handler so the HTTP surface rejects what the wizard would reject.
func ValidateDetails(d Details) map[string]string {
	fieldErrors := make(map[string]string)

	if len(strings.TrimSpace(d.Name)) < 2 {
		fieldErrors["name"] = "Please enter your full name"
	}
	if d.Age < 3 || d.Age > 100 {
		fieldErrors["age"] = "Age must be between 3 and 100"
	}
	if !emailPattern.MatchString(d.Email) {
		fieldErrors["email"] = "Please enter a valid email address"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
