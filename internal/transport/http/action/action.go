package action

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/core/csrf"
	"job-portal/internal/core/session"
	"job-portal/internal/domain"
	resp "job-portal/internal/transport/http/response"
)

type Binder string

const (
	BindForm  Binder = "form"  // POST form or query, by content type
	BindQuery Binder = "query" // ?a=b only
	BindNone  Binder = "none"  // handler reads c.Param / c.PostForm itself
)

// AErr is an error with the code and message a JSON client gets.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action is one JSON endpoint: I is bound from the request and the returned
// fields are merged into the success body.
type Action[I any] struct {
	Binder Binder
	// CSRF requires a valid token in the csrf_token field or X-CSRF-Token header.
	CSRF    bool
	Handler func(c *gin.Context, in *I) (gin.H, error)
}

// Handle turns a into a gin handler. Guards run before it in the route table.
func Handle[I any](l *zap.Logger, a Action[I]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.CSRF && !csrf.VerifyToken(session.From(c), csrf.FromRequest(c)) {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, csrf.Message))
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindForm:
			bindErr = c.ShouldBind(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, ""))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			code, msg := classify(err)
			if code == resp.CodeServerError {
				l.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
			}
			c.JSON(resp.HTTPStatus(code), resp.Error(code, msg))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}
}

// classify keeps business messages and hides everything else.
func classify(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code == resp.CodeServerError {
			return ae.Code, ""
		}
		return ae.Code, ae.Error()
	}
	if msgs := domain.Messages(err); len(msgs) > 0 {
		return resp.CodeBadRequest, strings.Join(msgs, ", ")
	}
	return resp.CodeServerError, ""
}
