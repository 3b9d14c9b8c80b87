package forms

import (
	"net/url"
)

type CommentForm struct {
	Name  string `form:"name"  validate:"required,max=80"`
	Email string `form:"email" validate:"required,max=254,email"`
	Body  string `form:"body"  validate:"required"`

	Errors Errors `form:"-" validate:"-"`
}

func NewCommentForm(values url.Values) *CommentForm {
	return &CommentForm{
		Name:  value(values, "name"),
		Email: value(values, "email"),
		Body:  value(values, "body"),
	}
}

// Validate fills form.Errors and reports whether the form is valid.
func (form *CommentForm) Validate() (bool, error) {
	errs, err := check(form)
	if err != nil {
		return false, err
	}

	form.Errors = errs

	return len(errs) == 0, nil
}

// EmailPostForm is the form to recommend a post by email.
type EmailPostForm struct {
	Name     string `form:"name"     validate:"required,max=25"`
	Email    string `form:"email"    validate:"required,max=254,email"`
	To       string `form:"to"       validate:"required,max=254,email"`
	Comments string `form:"comments" validate:"max=2000"`

	Errors Errors `form:"-" validate:"-"`
}

func NewEmailPostForm(values url.Values) *EmailPostForm {
	return &EmailPostForm{
		Name:     value(values, "name"),
		Email:    value(values, "email"),
		To:       value(values, "to"),
		Comments: value(values, "comments"),
	}
}

func (form *EmailPostForm) Validate() (bool, error) {
	errs, err := check(form)
	if err != nil {
		return false, err
	}

	form.Errors = errs

	return len(errs) == 0, nil
}

type SearchForm struct {
	Query string `form:"query" validate:"required,max=200"`

	Errors Errors `form:"-" validate:"-"`
}

func NewSearchForm(values url.Values) *SearchForm {
	return &SearchForm{
		Query: value(values, "query"),
	}
}

func (form *SearchForm) Validate() (bool, error) {
	errs, err := check(form)
	if err != nil {
		return false, err
	}

	form.Errors = errs

	return len(errs) == 0, nil
}
