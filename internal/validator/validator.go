package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/edulink/internal/model"
)

var (
	// trans is the singleton English translator for validation errors.
	trans     ut.Translator
	transOnce sync.Once

	// standalone validates values that do not come from a request body.
	standalone     *govalidator.Validate
	standaloneOnce sync.Once
)

func translator() ut.Translator {
	transOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
	})
	return trans
}

// Setup registers the validator with English translations and the registry's custom
// rules on Gin's binding engine. Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		Register(v)
	}
}

// Register installs tag names, translations and custom rules on v.
func Register(v *govalidator.Validate) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	trans := translator()
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("relationship_type", validRelationshipType)
	_ = v.RegisterTranslation("relationship_type", trans,
		func(ut ut.Translator) error {
			return ut.Add("relationship_type", "{0} is not a known relationship type", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T("relationship_type", fe.Field())
			return t
		},
	)

	v.RegisterStructValidation(contactPresent, model.RegisterPersonRequest{})
	_ = v.RegisterTranslation("contact_required", trans,
		func(ut ut.Translator) error {
			return ut.Add("contact_required", "email or phone is required", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T("contact_required")
			return t
		},
	)
}

func validRelationshipType(fl govalidator.FieldLevel) bool {
	t := model.RelationshipType(fl.Field().String())
	return model.IsGuardianType(t) || model.IsStaffType(t)
}

// contactPresent requires at least one of email or phone to be non-blank.
func contactPresent(sl govalidator.StructLevel) {
	req, ok := sl.Current().Interface().(model.RegisterPersonRequest)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		sl.ReportError(req.Email, "email", "Email", "contact_required", "")
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(translator())
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Struct validates s against its binding tags with the same rules and messages as Bind.
// It returns nil when s is valid.
func Struct(s interface{}) map[string]string {
	standaloneOnce.Do(func() {
		standalone = govalidator.New(govalidator.WithRequiredStructEnabled())
		standalone.SetTagName("binding")
		Register(standalone)
	})
	if err := standalone.Struct(s); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
