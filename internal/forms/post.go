package forms

import (
	"strconv"
	"strings"

	"yatube/internal/models"

	"github.com/samber/lo"
)

// PostInput is the raw post form as submitted.
type PostInput struct {
	Text  string
	Group string
	Image *Upload
}

// PostData is a validated post form ready to be applied to a models.Post.
type PostData struct {
	Text    string
	GroupID *uint
	Image   *ImageFile
}

type postFields struct {
	Text  string `form:"text" validate:"required,max=10000"`
	Group string `form:"group" validate:"omitempty,numeric"`
}

// DefaultMaxImageBytes applies when no positive upload limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

// Limits carries upload constraints that come from configuration.
type Limits struct {
	MaxImageBytes int64
}

// ImageBytes is the effective upload limit.
func (l Limits) ImageBytes() int64 {
	if l.MaxImageBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return l.MaxImageBytes
}

// ValidatePost validates in against the groups offered by the form.
func ValidatePost(in PostInput, groups []models.Group, lim Limits) (PostData, Errors) {
	errs := Errors{}
	fields := postFields{
		Text:  strings.TrimSpace(in.Text),
		Group: strings.TrimSpace(in.Group),
	}
	check(fields, errs)

	data := PostData{Text: fields.Text}

	if fields.Group != "" && !errs.Has("group") {
		id, err := strconv.ParseUint(fields.Group, 10, 64)
		_, known := lo.Find(groups, func(g models.Group) bool { return uint64(g.ID) == id })
		if err != nil || !known {
			errs.Add("group", msgInvalidChoice)
		} else {
			gid := uint(id)
			data.GroupID = &gid
		}
	}

	if in.Image != nil {
		img, msg := ValidateImage(in.Image, lim.ImageBytes())
		if msg != "" {
			errs.Add("image", msg)
		}
		data.Image = img
	}

	if errs.Any() {
		return PostData{}, errs
	}
	return data, nil
}

// Apply copies the validated fields onto post. The image is stored separately.
func (d PostData) Apply(post *models.Post) {
	post.Text = d.Text
	post.GroupID = d.GroupID
	post.Group = nil
}

// PostInputFrom pre-fills the form from an existing post.
func PostInputFrom(post *models.Post) PostInput {
	in := PostInput{Text: post.Text}
	if post.GroupID != nil {
		in.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return in
}

// Choice is one option of the group select.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// PostForm is what the post template renders.
type PostForm struct {
	Text     string
	Group    string
	Choices  []Choice
	Errors   Errors
	HasImage bool
}

// NewPostForm builds the renderable form with "---------" as the empty choice.
func NewPostForm(in PostInput, groups []models.Group, errs Errors) PostForm {
	selected := strings.TrimSpace(in.Group)
	choices := append([]Choice{{Value: "", Label: "---------", Selected: selected == ""}},
		lo.Map(groups, func(g models.Group, _ int) Choice {
			value := strconv.FormatUint(uint64(g.ID), 10)
			return Choice{Value: value, Label: g.Title, Selected: value == selected}
		})...)
	if errs == nil {
		errs = Errors{}
	}
	return PostForm{Text: in.Text, Group: in.Group, Choices: choices, Errors: errs}
}
