package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation rule patterns
var (
	// HobbyPattern allows short free-form tags: letters, digits, spaces, '-' and '&'
	HobbyPattern = `^[\p{L}\p{N}][\p{L}\p{N} &\-]*$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Hobby *regexp.Regexp
}{
	Hobby: regexp.MustCompile(HobbyPattern),
}

var registerOnce sync.Once

// RegisterGinValidators installs the custom binding tags on gin's validator
// and reports fields by their JSON/form name. Safe to call more than once.
func RegisterGinValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

// Register adds the "objectid" and "hobby" tags to v
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("objectid", isObjectID)
	_ = v.RegisterValidation("hobby", isHobby)
}

// fieldName prefers the json tag, then the form tag, then the Go name
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func isObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

func isHobby(fl validator.FieldLevel) bool {
	return CompiledPatterns.Hobby.MatchString(strings.TrimSpace(fl.Field().String()))
}
