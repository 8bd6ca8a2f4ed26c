package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/gpa-ledger/internal/domain"
)

// CourseInput is the raw, user-supplied description of a course.
// Fields are validated in declaration order and the first violation is reported.
type CourseInput struct {
	Name                string `field:"name" validate:"required"`
	Code                string `field:"code" validate:"required"`
	Credit              string `field:"credit" validate:"required,positive_real"`
	InstructorPrimary   string `field:"instructorPrimary" validate:"required"`
	InstructorSecondary string `field:"instructorSecondary" validate:"required"`
	Grade               string `field:"grade" validate:"required,grade"`
}

// inputValidator is safe for concurrent use once configured.
var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("positive_real", func(fl validator.FieldLevel) bool {
		credit, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && credit > 0 && !math.IsInf(credit, 0)
	})
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseGrade(fl.Field().String())
		return ok
	})

	return v
}

// normalized returns a copy of the input with surrounding whitespace removed.
func (in CourseInput) normalized() CourseInput {
	return CourseInput{
		Name:                strings.TrimSpace(in.Name),
		Code:                strings.TrimSpace(in.Code),
		Credit:              strings.TrimSpace(in.Credit),
		InstructorPrimary:   strings.TrimSpace(in.InstructorPrimary),
		InstructorSecondary: strings.TrimSpace(in.InstructorSecondary),
		Grade:               strings.TrimSpace(in.Grade),
	}
}

// Validate checks the input and returns a *domain.ValidationError for the
// first invalid field.
func (in CourseInput) Validate() error {
	n := in.normalized()
	err := inputValidator.Struct(n)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "course", Message: "invalid input", Err: err}
	}

	fe := fieldErrs[0]
	return domain.NewValidationError(fe.Field(), validationMessage(fe))
}

// Course validates the input and builds the course it describes.
func (in CourseInput) Course() (*domain.Course, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n := in.normalized()
	credit, _ := strconv.ParseFloat(n.Credit, 64)
	grade, _ := domain.ParseGrade(n.Grade)

	return domain.NewCourse(n.Name, n.Code, credit, n.InstructorPrimary, n.InstructorSecondary, grade), nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		switch fe.Field() {
		case "name":
			return "course name cannot be empty"
		case "code":
			return "course code cannot be empty"
		case "credit":
			return "course credit is required"
		case "instructorPrimary":
			return "primary instructor cannot be empty"
		case "instructorSecondary":
			return "secondary instructor cannot be empty"
		case "grade":
			return "a grade must be selected"
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "positive_real":
		return fmt.Sprintf("course credit must be a positive number, got %q", fe.Value())
	case "grade":
		return fmt.Sprintf("grade must be one of %s, got %q", gradeList(), fe.Value())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func gradeList() string {
	grades := domain.Grades()
	names := make([]string, len(grades))
	for i, g := range grades {
		names[i] = g.String()
	}
	return strings.Join(names, ", ")
}
