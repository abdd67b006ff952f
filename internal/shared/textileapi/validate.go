package textileapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// requestValidator 请求体校验器，规则与后端保持一致，尽量在发请求前发现问题
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		// 使用json标签作为字段名，错误信息与接口字段对应
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// decimal按float校验，支持 gt=0 之类的规则
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		validate = v
	})
	return validate
}

// Validate 校验请求结构体
func Validate(req interface{}) error {
	if err := requestValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if cv, ok := req.(interface{ check() error }); ok {
		if err := cv.check(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return field + " must be numeric"
	case "unique":
		return field + " must not contain duplicates"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
