package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/services/debounce"
	"github.com/meghashyamc/apotek/services/search"
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	maxPageSize              int
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger logger.Logger, maxPageSize int) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger, maxPageSize: maxPageSize}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return tagValidationDetails.err
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_query":     {validatorFunc: v.isValidQuery, err: errors.New("invalid query")},
			"free_text_query": {validatorFunc: v.isFreeTextQuery, err: errors.New("column filters are not supported on this endpoint")},
			"valid_kind":      {validatorFunc: v.isValidKind, err: errors.New("unknown record kind")},
			"valid_page_size": {validatorFunc: v.isValidPageSize, err: fmt.Errorf("per_page must be %d or between 1 and %d", search.Unlimited, v.maxPageSize)},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register customer validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func (v *Validator) isValidQuery(fl validator.FieldLevel) bool {
	query := fl.Field().String()
	if len(query) == 0 {
		return false
	}
	if strings.TrimSpace(query) == "" {
		v.logger.Warn("query is empty", "query", query)
		return false
	}

	return true
}

// isFreeTextQuery accepts an empty query but not column filter syntax.
func (v *Validator) isFreeTextQuery(fl validator.FieldLevel) bool {
	query := fl.Field().String()
	if debounce.IsColumnFilter(query) {
		v.logger.Warn("query uses column filter syntax", "query", query)
		return false
	}

	return true
}

func (v *Validator) isValidKind(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	if _, err := db.ParseKind(kind); err != nil {
		v.logger.Warn("unknown record kind", "kind", kind)
		return false
	}

	return true
}

// isValidPageSize allows the unset value too; callers apply the default.
func (v *Validator) isValidPageSize(fl validator.FieldLevel) bool {
	pageSize := int(fl.Field().Int())
	if pageSize == search.Unlimited || pageSize == 0 {
		return true
	}

	return pageSize > 0 && pageSize <= v.maxPageSize
}
