package endpoints

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
	return v
}

// ruleMessages maps "field.tag" to the message reported when that rule
// fails. The "required" key is used for any missing required field.
type ruleMessages map[string]string

// checkRequest validates req against its struct tags.
func checkRequest(req interface{}, msgs ruleMessages) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Internal(err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			if msg, ok := msgs["required"]; ok {
				return apperr.Validation("%s", msg)
			}
		}
	}
	fe := fieldErrs[0]
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return apperr.Validation("%s", msg)
	}
	return apperr.Validation("Invalid value for %s", fe.Field())
}

const roleMessage = `Role must be either "user" or "admin"`

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

var registerMessages = ruleMessages{
	"required":     "Missing required fields: username, email, password",
	"email.email":  "Invalid email format",
	"password.min": "Password must be at least 8 characters long",
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = ruleMessages{
	"required": "Missing required fields: email, password",
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

var createUserMessages = ruleMessages{
	"required":     "Missing required fields: username, email, password",
	"email.email":  "Invalid email format",
	"password.min": "Password must be at least 8 characters long",
	"role.oneof":   roleMessage,
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
}

var updateUserMessages = ruleMessages{
	"username.min": "Username cannot be empty",
	"email.email":  "Invalid email format",
	"role.oneof":   roleMessage,
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

var roleMessages = ruleMessages{
	"required":   roleMessage,
	"role.oneof": roleMessage,
}

type passwordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

var passwordMessages = ruleMessages{
	"required":        "New password must be at least 8 characters long",
	"newPassword.min": "New password must be at least 8 characters long",
}

type createPostRequest struct {
	Slug    string `json:"slug" validate:"required,slug"`
	Title   string `json:"title" validate:"required"`
	Summary string `json:"summary" validate:"required"`
	Content string `json:"content"`
	Pillar  string `json:"pillar" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

var createPostMessages = ruleMessages{
	"required":      "Missing required fields: slug, title, summary, pillar, date",
	"slug.slug":     "Slug must contain only lowercase letters, digits and hyphens",
	"date.datetime": "Date must be formatted as YYYY-MM-DD",
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
	Content *string `json:"content"`
	Pillar  *string `json:"pillar"`
	Date    *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

var updatePostMessages = ruleMessages{
	"date.datetime": "Date must be formatted as YYYY-MM-DD",
}

type createProjectRequest struct {
	Slug      string   `json:"slug" validate:"required,slug"`
	Title     string   `json:"title" validate:"required"`
	Summary   string   `json:"summary" validate:"required"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Thumbnail string   `json:"thumbnail"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
}

var createProjectMessages = ruleMessages{
	"required":      "Missing required fields: slug, title, summary, date",
	"slug.slug":     "Slug must contain only lowercase letters, digits and hyphens",
	"date.datetime": "Date must be formatted as YYYY-MM-DD",
}

type updateProjectRequest struct {
	Title     *string   `json:"title"`
	Summary   *string   `json:"summary"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	Thumbnail *string   `json:"thumbnail"`
	Date      *string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

var updateProjectMessages = ruleMessages{
	"date.datetime": "Date must be formatted as YYYY-MM-DD",
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

var contactMessages = ruleMessages{
	"required": "Missing required fields",
}
