package rest

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{validate: validate, trans: trans}
}

// Struct nil when s is valid, otherwise a validation error renderer.
func (v *requestValidator) Struct(s interface{}) *ErrResponse {
	if err := v.validate.Struct(s); err != nil {
		return ErrValidation(err, translateError(err, v.trans)).(*ErrResponse)
	}
	return nil
}
