package core

// validation.go turns loosely-typed lead input into a ValidatedLead.
//
// Validation happens in two stages:
//  1. Structural: per-field format, range and enum checks driven by the
//     validate tags on RawLead.
//  2. Cross-field: an ordered pipeline of independent rules over a record
//     that already passed stage 1.
//
// Stage 2 only runs when stage 1 reports nothing, so a caller never sees a
// cross-field error for a record that is also structurally broken.

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern  = regexp.MustCompile(`^\d{10,15}$`)
	budgetPattern = regexp.MustCompile(`^\d{1,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name so errors line up with form and CSV columns.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "phonedigits", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "budget", func(fl validator.FieldLevel) bool {
		return budgetPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is the ordered list of field errors for one record.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// crossFieldRule checks one relationship between fields of a structurally
// valid lead. It returns nil when the rule holds.
type crossFieldRule func(ValidatedLead) *ValidationError

var crossFieldRules = []crossFieldRule{
	requireBHKForResidential,
	requireBudgetOrder,
}

func requireBHKForResidential(l ValidatedLead) *ValidationError {
	if l.PropertyType.Residential() && l.BHK == "" {
		return &ValidationError{
			Field:   "bhk",
			Message: "is required for Apartment and Villa",
		}
	}
	return nil
}

func requireBudgetOrder(l ValidatedLead) *ValidationError {
	if l.BudgetMin != nil && l.BudgetMax != nil && *l.BudgetMax < *l.BudgetMin {
		return &ValidationError{
			Field:   "budgetMax",
			Value:   strconv.FormatInt(*l.BudgetMax, 10),
			Message: "must be greater than or equal to budgetMin",
		}
	}
	return nil
}

// Validate checks raw lead input and returns either a fully typed lead or a
// ValidationErrors describing every problem, never both. It has no side
// effects and is safe for concurrent use.
func Validate(raw RawLead) (ValidatedLead, error) {
	raw = normalizeRaw(raw)

	if err := validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ValidatedLead{}, err
		}
		errs := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Value:   fieldValue(fe),
				Message: fieldMessage(fe),
			})
		}
		return ValidatedLead{}, errs
	}

	lead := toValidated(raw)

	var errs ValidationErrors
	for _, rule := range crossFieldRules {
		if fe := rule(lead); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return ValidatedLead{}, errs
	}

	if !lead.PropertyType.Residential() {
		lead.BHK = ""
	}
	return lead, nil
}

// normalizeRaw trims every field and drops blank tags.
func normalizeRaw(raw RawLead) RawLead {
	raw.FullName = strings.TrimSpace(raw.FullName)
	raw.Email = strings.TrimSpace(raw.Email)
	raw.Phone = strings.TrimSpace(raw.Phone)
	raw.City = strings.TrimSpace(raw.City)
	raw.PropertyType = strings.TrimSpace(raw.PropertyType)
	raw.BHK = strings.TrimSpace(raw.BHK)
	raw.Purpose = strings.TrimSpace(raw.Purpose)
	raw.BudgetMin = NumberInput(strings.TrimSpace(string(raw.BudgetMin)))
	raw.BudgetMax = NumberInput(strings.TrimSpace(string(raw.BudgetMax)))
	raw.Timeline = strings.TrimSpace(raw.Timeline)
	raw.Source = strings.TrimSpace(raw.Source)
	raw.Status = strings.TrimSpace(raw.Status)
	raw.Notes = strings.TrimSpace(raw.Notes)

	tags := make([]string, 0, len(raw.Tags))
	for _, t := range raw.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	raw.Tags = tags
	return raw
}

// toValidated converts structurally valid input to typed fields.
func toValidated(raw RawLead) ValidatedLead {
	status := Status(raw.Status)
	if status == "" {
		status = StatusNew
	}
	return ValidatedLead{
		FullName:     raw.FullName,
		Email:        raw.Email,
		Phone:        raw.Phone,
		City:         City(raw.City),
		PropertyType: PropertyType(raw.PropertyType),
		BHK:          BHK(raw.BHK),
		Purpose:      Purpose(raw.Purpose),
		BudgetMin:    parseBudget(raw.BudgetMin),
		BudgetMax:    parseBudget(raw.BudgetMax),
		Timeline:     Timeline(raw.Timeline),
		Source:       Source(raw.Source),
		Status:       status,
		Notes:        raw.Notes,
		Tags:         raw.Tags,
	}
}

// parseBudget returns nil for an empty value. Input has already matched
// budgetPattern.
func parseBudget(n NumberInput) *int64 {
	if n == "" {
		return nil
	}
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func fieldValue(fe validator.FieldError) string {
	switch v := fe.Value().(type) {
	case string:
		return v
	case NumberInput:
		return string(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return ""
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "phonedigits":
		return "must be 10 to 15 digits"
	case "budget":
		return "must be a non-negative whole number"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "unique":
		return "must not contain duplicates"
	case "excludes":
		return "must not contain commas"
	default:
		return "is invalid"
	}
}
