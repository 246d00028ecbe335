package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/offlinenav/pkg/server"
)

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		AppCode:        int64(server.ErrBadParamInput),
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		AppCode:        int64(server.ErrBadParamInput),
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		AppCode:        int64(server.ErrInternalServerError),
		ErrorText:      err.Error(),
	}
}

// ErrorRenderer maps a service error to its response. "not found" & "no route" share the 404 status
// but have distinct status texts & codes.
func ErrorRenderer(err error) render.Renderer {
	var serverErr *server.Error
	if !errors.As(err, &serverErr) {
		return ErrInternalServerErrorRend(errors.New("internal server error"))
	}

	resp := &ErrResponse{
		Err:       err,
		AppCode:   int64(serverErr.Code()),
		ErrorText: serverErr.Message(),
	}
	switch serverErr.Code() {
	case server.ErrNotFound:
		resp.HTTPStatusCode = http.StatusNotFound
		resp.StatusText = "Not found."
	case server.ErrNoRoute:
		resp.HTTPStatusCode = http.StatusNotFound
		resp.StatusText = "No route."
	case server.ErrBadParamInput:
		resp.HTTPStatusCode = http.StatusBadRequest
		resp.StatusText = "Invalid request."
	case server.ErrUnavailable:
		resp.HTTPStatusCode = http.StatusServiceUnavailable
		resp.StatusText = "Store unavailable."
	case server.ErrTimeout:
		resp.HTTPStatusCode = http.StatusGatewayTimeout
		resp.StatusText = "Timeout."
	default:
		resp.HTTPStatusCode = http.StatusInternalServerError
		resp.StatusText = "Internal server error."
		resp.ErrorText = "internal server error"
	}
	return resp
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf("%s", e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
