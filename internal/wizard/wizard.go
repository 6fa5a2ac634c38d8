package wizard

import (
	"fmt"
	"time"

	"github.com/academyhq/academy-backend/internal/utils"
)

// Step is one position in the linear booking flow.
type Step string

const (
	StepSport        Step = "sport"
	StepCalendar     Step = "calendar"
	StepAuth         Step = "auth"
	StepDetails      Step = "details"
	StepConfirmation Step = "confirmation"
)

var stepOrder = []Step{StepSport, StepCalendar, StepAuth, StepDetails, StepConfirmation}

// Booking outcome recorded on the state once the details step submits.
const (
	BookingStatusNone    = ""
	BookingStatusCreated = "created"
	BookingStatusFailed  = "failed"
)

// Details are the user fields collected at the details step.
type Details struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

// State is the full wizard state. Transitions go through Apply; steps move
// forward or backward by exactly one position, never skipping.
type State struct {
	CurrentStep     Step              `json:"current_step"`
	SelectedSport   string            `json:"selected_sport"`
	SelectedDate    *time.Time        `json:"selected_date,omitempty"`
	UserPhone       string            `json:"user_phone"`
	IsAuthenticated bool              `json:"is_authenticated"`
	UserDetails     Details           `json:"user_details"`
	BookingStatus   string            `json:"booking_status"`
	ActualBookingID string            `json:"actual_booking_id"`
	Errors          map[string]string `json:"errors,omitempty"`
}

// NewState starts a fresh wizard. A preselected sport skips straight to the
// calendar step.
func NewState(initialSport string) State {
	st := State{CurrentStep: StepSport}
	if initialSport != "" {
		st.SelectedSport = initialSport
		st.CurrentStep = StepCalendar
	}
	return st
}

// Events accepted by Apply.

type SelectSport struct{ Sport string }
type SelectDate struct{ Date time.Time }
type Authenticated struct{ Phone string }
type SubmitDetails struct{ Details Details }
type BookingCreated struct{ BookingID string }
type BookingFailed struct{}
type Next struct{}
type Back struct{}

// Apply is the pure transition function. Field events record data; Next
// validates the current step and either advances one position or lands the
// validation messages in Errors; Back retreats one position. Apply never
// mutates its input.
func Apply(state State, event interface{}) (State, error) {
	st := clone(state)

	switch e := event.(type) {
	case SelectSport:
		st.SelectedSport = e.Sport
		clearError(&st, "sport")
	case SelectDate:
		date := e.Date
		st.SelectedDate = &date
		clearError(&st, "date")
	case Authenticated:
		st.UserPhone = e.Phone
		st.IsAuthenticated = true
		clearError(&st, "auth")
	case SubmitDetails:
		st.UserDetails = e.Details
		clearError(&st, "name")
		clearError(&st, "age")
		clearError(&st, "email")
	case BookingCreated:
		st.ActualBookingID = e.BookingID
		st.BookingStatus = BookingStatusCreated
	case BookingFailed:
		st.BookingStatus = BookingStatusFailed
	case Next:
		return advance(st), nil
	case Back:
		return retreat(st), nil
	default:
		return state, fmt.Errorf("unknown wizard event %T", event)
	}
	return st, nil
}

func advance(st State) State {
	if fieldErrors := validateStep(st); len(fieldErrors) > 0 {
		st.Errors = fieldErrors
		return st
	}
	st.Errors = nil

	idx := stepIndex(st.CurrentStep)
	if idx < 0 || idx == len(stepOrder)-1 {
		return st
	}
	st.CurrentStep = stepOrder[idx+1]

	// The confirmation step always has a reference to show: the backend's
	// if booking creation succeeded, a local placeholder otherwise.
	if st.CurrentStep == StepConfirmation && st.ActualBookingID == "" {
		st.ActualBookingID = utils.NewLocalBookingRef()
	}
	return st
}

func retreat(st State) State {
	idx := stepIndex(st.CurrentStep)
	if idx <= 0 {
		return st
	}
	st.CurrentStep = stepOrder[idx-1]
	st.Errors = nil
	return st
}

func stepIndex(step Step) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

func clone(st State) State {
	out := st
	if st.SelectedDate != nil {
		date := *st.SelectedDate
		out.SelectedDate = &date
	}
	if st.Errors != nil {
		out.Errors = make(map[string]string, len(st.Errors))
		for k, v := range st.Errors {
			out.Errors[k] = v
		}
	}
	return out
}

func clearError(st *State, field string) {
	if st.Errors != nil {
		delete(st.Errors, field)
		if len(st.Errors) == 0 {
			st.Errors = nil
		}
	}
}
