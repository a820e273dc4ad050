package catalog

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type createReq struct {
	Title       string   `json:"title"       validate:"required"`
	Description string   `json:"description" validate:"required"`
	Code        string   `json:"code"        validate:"required"`
	Price       float64  `json:"price"       validate:"required,gt=0"`
	Stock       float64  `json:"stock"       validate:"required,gt=0"`
	Category    string   `json:"category"    validate:"required"`
	Status      *bool    `json:"status"`
	Thumbnails  []string `json:"thumbnails"  validate:"omitempty,dive,required"`
}

func (r createReq) toNewProduct() NewProduct {
	return NewProduct{
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Price:       r.Price,
		Status:      r.Status,
		Stock:       r.Stock,
		Category:    r.Category,
		Thumbnails:  r.Thumbnails,
	}
}

// updateReq is a partial product: absent fields are left as they are.
type updateReq struct {
	Title       *string   `json:"title"       validate:"omitempty,min=1"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	Code        *string   `json:"code"        validate:"omitempty,min=1"`
	Price       *float64  `json:"price"       validate:"omitempty,gt=0"`
	Status      *bool     `json:"status"`
	Stock       *float64  `json:"stock"       validate:"omitempty,min=0"`
	Category    *string   `json:"category"    validate:"omitempty,min=1"`
	Thumbnails  *[]string `json:"thumbnails"  validate:"omitempty,dive,required"`
}

func (r updateReq) toPatch() ProductPatch {
	return ProductPatch{
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Price:       r.Price,
		Status:      r.Status,
		Stock:       r.Stock,
		Category:    r.Category,
		Thumbnails:  r.Thumbnails,
	}
}

// validateStruct returns field -> failed rule, or nil when v is valid.
func validateStruct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = "failed on rule: " + fe.Tag()
	}
	return out
}
