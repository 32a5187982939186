package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"orbitaledge/internal/apperror"
)

// errorResponder renders apperror kinds. Internal details are only exposed
// when debug is set.
type errorResponder struct {
	debug bool
}

func (r errorResponder) respond(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal("", err)
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		issues := appErr.Issues
		if issues == nil {
			issues = []apperror.Issue{}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   appErr.Message,
			"details": issues,
		})
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": appErr.Message})
	default:
		body := gin.H{"error": "Internal Server Error"}
		if r.debug {
			body["message"] = appErr.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

var registerOnce sync.Once

// registerTagNames makes validator report json/form names so issue paths
// match what the client sent.
func registerTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// bindingIssues converts a gin binding error into issues.
func bindingIssues(err error) []apperror.Issue {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		issues := make([]apperror.Issue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, apperror.Issue{Path: fe.Field(), Message: fieldMessage(fe)})
		}
		return issues
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []apperror.Issue{{Path: typeErr.Field, Message: "expected " + typeErr.Type.String()}}
	}

	return []apperror.Issue{{Path: "", Message: "body must be a JSON object"}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must contain at least %s character(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "datetime":
		return "must be an RFC 3339 timestamp"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
