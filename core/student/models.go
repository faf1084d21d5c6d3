package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/logopedika/kabinet/core"
)

// Student is one child on the cabinet's roster. PlanType points at one of the
// 6 fixed plan template slots; progress records are indexed against that template.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	PlanType  int       `json:"planType"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewStudent contains information needed to add a Student to the roster.
type NewStudent struct {
	Name     string `json:"name" validate:"required"`
	Grade    string `json:"grade" validate:"required"`
	PlanType int    `json:"planType" validate:"required,plantype"`
	Notes    string `json:"notes"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade)
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	Name     string  `json:"name"`
	Grade    string  `json:"grade"`
	PlanType int     `json:"planType" validate:"omitempty,plantype"`
	Notes    *string `json:"notes"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if grade := core.CleanString(us.Grade); grade != "" {
		us.Grade = grade
	} else {
		us.Grade = orig.Grade
	}
	if us.PlanType == 0 {
		us.PlanType = orig.PlanType
	}
	return validate.Struct(us)
}
