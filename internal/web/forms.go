package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// maxFormMemory bounds the multipart form held in memory before spilling
// to temporary files.
const maxFormMemory = 32 << 20

// secret is a form value kept exactly as posted, e.g. a password.
type secret string

var (
	decoder  = newDecoder()
	validate = newValidator()
)

// newDecoder decodes tagged fields only. Strings are trimmed and checkbox
// values such as "on" count as true; secret fields are left untouched.
func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetMode(form.ModeExplicit)
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return strings.TrimSpace(vals[0]), nil
	}, "")
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		switch vals[0] {
		case "on", "true", "1", "y":
			return true, nil
		}
		return false, nil
	}, false)
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindForm decodes the posted form, urlencoded or multipart, into dst.
// Decode failures leave the affected fields empty for checkForm to report.
func bindForm(r *http.Request, dst any) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		slog.Warn("failed to parse form", "path", r.URL.Path, "error", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		slog.Warn("failed to decode form", "path", r.URL.Path, "error", err)
	}
}

// checkForm validates a bound form and returns field messages keyed by
// form name, or nil when the form is valid.
func checkForm(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "Invalid form data."}
	}
	msgs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, ok := msgs[fe.Field()]; !ok {
			msgs[fe.Field()] = fieldMessage(fe)
		}
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Passwords must match."
	case "oneof":
		return "Choose a valid option."
	default:
		return "Invalid value."
	}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password secret `form:"password" validate:"required"`
}

type registerForm struct {
	Username        string `form:"username" validate:"required,min=3,max=20"`
	Email           string `form:"email" validate:"required,email"`
	Password        secret `form:"password" validate:"required,min=6"`
	ConfirmPassword secret `form:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `form:"role" validate:"required,oneof=student admin"`
}

type profileForm struct {
	Username string `form:"username" validate:"required,min=3,max=20"`
	Email    string `form:"email" validate:"required,email"`
}

type passwordForm struct {
	CurrentPassword secret `form:"current_password" validate:"required"`
	NewPassword     secret `form:"new_password" validate:"required,min=6"`
	ConfirmPassword secret `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type reportForm struct {
	ItemName        string `form:"item_name" validate:"required,max=100"`
	Category        string `form:"category" validate:"required,max=50"`
	Description     string `form:"description" validate:"required,max=500"`
	Location        string `form:"location" validate:"required,max=100"`
	CurrentLocation string `form:"current_location" validate:"max=100"`
	FullNames       string `form:"full_names" validate:"required,max=100"`
	StudentNumber   string `form:"student_number" validate:"required,max=20"`
	StudentEmail    string `form:"student_email" validate:"required,email"`
}

type claimForm struct {
	FullNames     string `form:"full_names" validate:"required,max=100"`
	StudentNumber string `form:"student_number" validate:"required,max=20"`
	StudentEmail  string `form:"student_email" validate:"required,email"`
	Description   string `form:"description" validate:"required,max=500"`
	ItemType      string `form:"item_type" validate:"required,oneof=lost found"`
	ItemID        string `form:"item_id"`
}

type editItemForm struct {
	ItemName        string `form:"item_name" validate:"required,max=100"`
	Category        string `form:"category" validate:"required,max=50"`
	Description     string `form:"description" validate:"required,max=500"`
	Location        string `form:"location" validate:"required,max=100"`
	CurrentLocation string `form:"current_location" validate:"max=100"`
	Status          string `form:"status" validate:"required,oneof=active claimed returned expired"`
	Verified        bool   `form:"is_verified"`
	ExpiresAt       string `form:"expires_at" validate:"omitempty,datetime=2006-01-02"`
}

type claimDecisionForm struct {
	Status     string `form:"status" validate:"required"`
	AdminNotes string `form:"admin_notes" validate:"max=500"`
}

type userForm struct {
	Username string `form:"username" validate:"required,min=3,max=20"`
	Email    string `form:"email" validate:"required,email"`
	Role     string `form:"role" validate:"required,oneof=student admin"`
	Verified bool   `form:"is_verified"`
	Banned   bool   `form:"is_banned"`
}

type catalogForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Description string `form:"description" validate:"max=200"`
	Active      bool   `form:"is_active"`
}

type settingForm struct {
	Key         string `form:"key" validate:"required,max=100"`
	Value       string `form:"value" validate:"required"`
	Description string `form:"description" validate:"max=200"`
}
