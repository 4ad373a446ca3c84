package api

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/apperr"
	"go.uber.org/zap"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report the JSON name of a failing
// field ("linkedProject") instead of the Go name ("LinkedProject").
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// respondError converts err to a status and {"error": ...} body. Store
// failures are logged here and reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindPersistence {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	body := gin.H{"error": appErr.Public()}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.Status(), body)
}

// bindJSON decodes the body into req. On failure it writes a 400 with one
// detail per failing field and returns false.
func bindJSON(c *gin.Context, logger *zap.Logger, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	details := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
	} else {
		details["body"] = "must be valid JSON matching the request schema"
	}
	respondError(c, logger, apperr.Validation("invalid request body", details))
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// pathUUID parses a uuid path parameter. On failure it writes a 400 and
// returns false.
func pathUUID(c *gin.Context, logger *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, logger, apperr.Field(name, "must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func pathInt64(c *gin.Context, logger *zap.Logger, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, logger, apperr.Field(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}
