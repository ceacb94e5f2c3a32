package services

import (
	"errors"
	"fmt"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one admin write action. The HTTP layer turns it into a
// flash message plus redirect, or returns it as JSON.
type Result struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	RedirectTarget string `json:"redirect_target"`
	ProjectID      int64  `json:"project_id,omitempty"`
	// HTTPStatus is the status a JSON client receives. It is 200 on success.
	HTTPStatus int `json:"-"`
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func success(message, redirect string, projectID int64) Result {
	return Result{
		Status:         StatusSuccess,
		Message:        message,
		RedirectTarget: redirect,
		ProjectID:      projectID,
		HTTPStatus:     200,
	}
}

// failure renders err as "operation failed: <message>".
func failure(err error, redirect string, projectID int64) Result {
	var vErr *media.ValidationError
	if errors.As(err, &vErr) {
		err = vErr.ApiErr()
	}
	return Result{
		Status:         StatusError,
		Message:        "operation failed: " + errorMessage(err),
		RedirectTarget: redirect,
		ProjectID:      projectID,
		HTTPStatus:     errs.StatusOf(err),
	}
}

func errorMessage(err error) string {
	if apiErr, ok := err.(interface{ Message() string }); ok {
		return apiErr.Message()
	}
	return err.Error()
}

func editTarget(id int64) string {
	if id <= 0 {
		return "/admin/edit"
	}
	return fmt.Sprintf("/admin/edit?id=%d", id)
}

const adminIndexTarget = "/admin/"

// Failed builds the error Result for a request that never reached an action, such as an
// unreadable form or an unknown action name.
func Failed(err error, redirect string) Result {
	return failure(err, redirect, 0)
}

// AdminIndex is where actions without a project land.
const AdminIndex = adminIndexTarget
