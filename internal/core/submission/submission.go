// Package submission holds the rules a new snippet must pass before any
// backend call is made.
package submission

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"snippets/internal/core/apperr"

	"github.com/go-playground/validator/v10"
)

const (
	MaxImageURLLength = 2048
	MaxCaptionLength  = 1000
)

const (
	MsgInvalidURL   = "Please enter a valid URL"
	MsgURLTooLong   = "URL is too long"
	MsgCaptionLong  = "Description must be less than 1000 characters"
	MsgSelectTarget = "Please select a user"
)

// Submission is the raw form input.
type Submission struct {
	ImageURL string
	Caption  string
}

// Accepted is a submission that passed every rule, normalized for storage.
type Accepted struct {
	ImageURL     string
	Caption      *string
	TargetUserID string
}

type candidate struct {
	ImageURL string `validate:"required,url,max=2048"`
	Caption  string `validate:"max=1000"`
}

type targetedCandidate struct {
	ImageURL     string `validate:"required,url,max=2048"`
	Caption      string `validate:"max=1000"`
	TargetUserID string `validate:"required,uuid"`
}

var validate = validator.New()

var messages = map[string]map[string]string{
	"ImageURL": {
		"required": MsgInvalidURL,
		"url":      MsgInvalidURL,
		"max":      MsgURLTooLong,
	},
	"Caption": {
		"max": MsgCaptionLong,
	},
	"TargetUserID": {
		"required": MsgSelectTarget,
		"uuid":     MsgSelectTarget,
	},
}

var fieldNames = map[string]string{
	"ImageURL":     "image_url",
	"Caption":      "caption",
	"TargetUserID": "user_id",
}

// Validate checks a self-authored submission.
func Validate(s Submission) (Accepted, error) {
	c := normalize(s)
	if err := firstViolation(validate.Struct(c)); err != nil {
		return Accepted{}, err
	}
	return accept(c, ""), nil
}

// ValidateTargeted checks a submission an administrator files on behalf of
// targetUserID. The target rule runs after the content rules.
func ValidateTargeted(s Submission, targetUserID string) (Accepted, error) {
	c := normalize(s)
	tc := targetedCandidate{
		ImageURL:     c.ImageURL,
		Caption:      c.Caption,
		TargetUserID: strings.ToLower(strings.TrimSpace(targetUserID)),
	}
	if err := firstViolation(validate.Struct(tc)); err != nil {
		return Accepted{}, err
	}
	return accept(c, tc.TargetUserID), nil
}

func normalize(s Submission) candidate {
	return candidate{
		ImageURL: strings.TrimSpace(s.ImageURL),
		Caption:  strings.TrimSpace(s.Caption),
	}
}

func accept(c candidate, target string) Accepted {
	a := Accepted{ImageURL: c.ImageURL, TargetUserID: target}
	if c.Caption != "" {
		caption := c.Caption
		a.Caption = &caption
	}
	return a
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate submission: %w", err)
	}
	fe := verrs[0]
	msg, ok := messages[fe.StructField()][fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", fieldNames[fe.StructField()])
	}
	return apperr.NewValidation(fieldNames[fe.StructField()], msg)
}

// CaptionCounter renders the live counter shown under the caption field.
func CaptionCounter(caption string) string {
	return fmt.Sprintf("%d/%d", utf8.RuneCountInString(caption), MaxCaptionLength)
}

// Submittable reports whether the submit control is enabled.
func Submittable(imageURL string, pending bool) bool {
	return !pending && imageURL != ""
}

// SubmittableFor is Submittable for the administrator form, which also needs a
// selected target.
func SubmittableFor(imageURL, targetUserID string, pending bool) bool {
	return Submittable(imageURL, pending) && targetUserID != ""
}
