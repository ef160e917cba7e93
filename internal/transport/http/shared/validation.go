package shared

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"perfeval/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate decodes a JSON body into dst and runs its `validate`
// struct tags. On failure it writes the validation response and returns
// false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, requestID string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", requestID)
		return false
	}
	return Validate(w, requestID, dst)
}

// Validate runs dst's `validate` struct tags and writes the validation
// response on failure.
func Validate(w http.ResponseWriter, requestID string, dst any) bool {
	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", requestID)
		return false
	}

	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ValidationIssue{
			Field:  jsonFieldName(fe),
			Reason: reasonFor(fe),
		})
	}
	FailValidation(w, requestID, issues)
	return false
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	// Struct fields map onto lowerCamel JSON names throughout the API.
	return strings.ToLower(name[:1]) + name[1:]
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid uuid"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
