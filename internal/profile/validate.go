package profile

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Form is the profile editor's input. Age and city are collected for the form only.
type Form struct {
	FullName string `validate:"required,min=2,personname"`
	Age      string `validate:"required,adultage"`
	City     string `validate:"required"`
}

// Age limits accepted by the form.
const (
	MinAge = 18
	MaxAge = 120
)

var (
	personName    = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	leadingNumber = regexp.MustCompile(`^[+-]?\d+`)
)

// parseAge reads the whole number at the start of s and ignores the rest,
// so "25yrs" is 25 and "18.5" is 18.
func parseAge(s string) (int, bool) {
	n, err := strconv.Atoi(leadingNumber.FindString(s))
	return n, err == nil
}

var (
	validatorOnce sync.Once
	formValidator *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personName.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("adultage", func(fl validator.FieldLevel) bool {
			age, ok := parseAge(fl.Field().String())
			return ok && age >= MinAge && age <= MaxAge
		})
		formValidator = v
	})
	return formValidator
}

// ValidateForm checks f and returns a message per failing field, keyed by the
// field's snake_case name. An empty map means the form is valid.
func ValidateForm(f Form) map[string]string {
	f = Form{
		FullName: strings.TrimSpace(f.FullName),
		Age:      strings.TrimSpace(f.Age),
		City:     strings.TrimSpace(f.City),
	}

	problems := map[string]string{}

	err := validate().Struct(f)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return problems
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "FullName":
			problems["full_name"] = nameMessage(fe.Tag())
		case "Age":
			problems["age"] = ageMessage(fe.Tag(), f.Age)
		case "City":
			problems["city"] = "City is required"
		}
	}

	return problems
}

func nameMessage(tag string) string {
	switch tag {
	case "required":
		return "Name is required"
	case "min":
		return "Name must be at least 2 characters long"
	default:
		return "Name can only contain letters, spaces, hyphens, and apostrophes"
	}
}

func ageMessage(tag, age string) string {
	if tag == "required" {
		return "Age is required"
	}
	n, ok := parseAge(age)
	switch {
	case !ok:
		return "Age must be a valid number"
	case n < MinAge:
		return "You must be at least 18 years old"
	default:
		return "Please enter a valid age"
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeInput trims s and collapses runs of whitespace to one space.
func SanitizeInput(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// AgeOn returns the age in whole years on the given day for a YYYY-MM-DD birth date.
func AgeOn(birthDate string, today time.Time) (int, error) {
	birth, err := time.Parse(time.DateOnly, birthDate)
	if err != nil {
		return 0, err
	}

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age, nil
}

// BirthDateForAge returns January 1st of the birth year implied by age.
func BirthDateForAge(age int, today time.Time) string {
	return time.Date(today.Year()-age, time.January, 1, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}
