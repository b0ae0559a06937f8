package forms

import "strings"

// CommentInput is the raw comment form as submitted.
type CommentInput struct {
	Text string
}

// CommentData is a validated comment.
type CommentData struct {
	Text string
}

type commentFields struct {
	Text string `form:"text" validate:"required,max=5000"`
}

// ValidateComment requires non-blank text.
func ValidateComment(in CommentInput) (CommentData, Errors) {
	errs := Errors{}
	fields := commentFields{Text: strings.TrimSpace(in.Text)}
	check(fields, errs)
	if errs.Any() {
		return CommentData{}, errs
	}
	return CommentData{Text: fields.Text}, nil
}

// CommentForm is what the comment box renders.
type CommentForm struct {
	Text   string
	Errors Errors
}

func NewCommentForm(in CommentInput, errs Errors) CommentForm {
	if errs == nil {
		errs = Errors{}
	}
	return CommentForm{Text: in.Text, Errors: errs}
}
