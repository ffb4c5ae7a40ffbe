package validators

import (
	"reflect"
	"strings"
	"time"
	"unicode"
	"wemakedo/cmd/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

// Register installs every custom tag used by request structs and reports
// failed fields by their JSON names.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	_ = validate.RegisterValidation("category", IsCategory)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = validate.RegisterValidation("notblank", NotBlank)
	_ = validate.RegisterValidation("gathstatus", IsGatheringStatus)
}

func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func IsCategory(fl validator.FieldLevel) bool {
	return entity.IsCategory(fl.Field().String())
}

func IsGatheringStatus(fl validator.FieldLevel) bool {
	switch entity.GatheringStatus(fl.Field().String()) {
	case entity.GatheringRecruiting, entity.GatheringClosed, entity.GatheringCanceled:
		return true
	}
	return false
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
