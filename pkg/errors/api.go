package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"jobmon/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/errors"
)

var DefaultHTTPCode = http.StatusBadRequest

type apiError struct {
	response.Response
}

func (a *apiError) Error() string {
	return a.Detail
}

func errorAsJSON(err *apiError) []byte {
	//nolint:errchkjson
	b, _ := json.Marshal(err.Response)
	return b
}

func New(message string, args ...interface{}) *apiError {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &apiError{Response: response.Fail(message, nil)}
}

func flattenComposite(errs *errors.CompositeError) *errors.CompositeError {
	var res []error
	for _, er := range errs.Errors {
		switch e := er.(type) {
		case *errors.CompositeError:
			if e != nil && len(e.Errors) > 0 {
				flat := flattenComposite(e)
				if len(flat.Errors) > 0 {
					res = append(res, flat.Errors...)
				}
			}
		default:
			if e != nil {
				res = append(res, e)
			}
		}
	}
	return errors.CompositeValidationError(res...)
}

// ServeError 将 err 写为统一响应. 组合校验错误的全部信息以 "; " 连接, 状态码取第一个错误.
func ServeError(rw http.ResponseWriter, r *http.Request, err error) {
	rw.Header().Set("Content-Type", "application/json")
	switch e := err.(type) {
	case *errors.CompositeError:
		er := flattenComposite(e)
		if len(er.Errors) == 0 {
			// guard against empty CompositeError (invalid construct)
			ServeError(rw, r, nil)
			return
		}
		msgs := make([]string, 0, len(er.Errors))
		for _, x := range er.Errors {
			msgs = append(msgs, x.Error())
		}
		code := http.StatusUnprocessableEntity
		if first, ok := er.Errors[0].(errors.Error); ok {
			code = int(first.Code())
		}
		rw.WriteHeader(asHTTPCode(code))
		if r == nil || r.Method != http.MethodHead {
			_, _ = rw.Write(errorAsJSON(New(strings.Join(msgs, "; "))))
		}
	case *errors.MethodNotAllowedError:
		rw.Header().Add("Allow", strings.Join(e.Allowed, ","))
		rw.WriteHeader(asHTTPCode(int(e.Code())))
		if r == nil || r.Method != http.MethodHead {
			_, _ = rw.Write(errorAsJSON(New(e.Error())))
		}
	case errors.Error:
		value := reflect.ValueOf(e)
		if value.Kind() == reflect.Ptr && value.IsNil() {
			rw.WriteHeader(http.StatusInternalServerError)
			_, _ = rw.Write(errorAsJSON(New("Unknown error")))
			return
		}
		rw.WriteHeader(asHTTPCode(int(e.Code())))
		if r == nil || r.Method != http.MethodHead {
			_, _ = rw.Write(errorAsJSON(New(e.Error())))
		}
	case nil:
		rw.WriteHeader(http.StatusInternalServerError)
		_, _ = rw.Write(errorAsJSON(New("Unknown error")))
	default:
		slog.Error("unhandled api error", "err", err)
		rw.WriteHeader(http.StatusInternalServerError)
		if r == nil || r.Method != http.MethodHead {
			_, _ = rw.Write(errorAsJSON(New(err.Error())))
		}
	}
}

// Abort 写入错误响应并终止后续 handler.
func Abort(c *gin.Context, err error) {
	ServeError(c.Writer, c.Request, err)
	c.Abort()
}

const maximumValidHTTPCode = 600

func asHTTPCode(input int) int {
	if input >= maximumValidHTTPCode {
		return DefaultHTTPCode
	}
	return input
}
