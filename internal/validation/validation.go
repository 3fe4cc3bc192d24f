// Package validation decodes request bodies into typed inputs.
package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/taskflow-dev/taskflow/internal/perrors"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("https_url", httpsURL)
	}
}

// httpsURL accepts an empty string, which clears the value, or an absolute
// https URL whose host is not loopback, private or link-local.
func httpsURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	return publicHTTPSURL(raw)
}

// publicHTTPSURL reports whether raw is an https URL pointing at a public host.
func publicHTTPSURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.User != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return false
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
			return false
		}
	}
	return true
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// Decode binds the JSON body into T and runs its binding rules. Failures come
// back as an invalid_input error listing each offending field.
func Decode[T any](ctx *gin.Context) (T, error) {
	var input T

	if err := ctx.ShouldBindJSON(&input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]perrors.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, perrors.FieldError{Field: fe.Field(), Message: message(fe)})
			}
			return input, perrors.NewErrInvalidInput("Invalid data", fields...)
		}
		return input, perrors.NewErrInvalidInput("Invalid request")
	}

	return input, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "https_url":
		return fmt.Sprintf("%s must be a public https URL", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
