package submission

import (
	"strings"
	"testing"

	"snippets/internal/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireRejected(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, msg, ve.Message)
}

func TestValidateAccepts(t *testing.T) {
	a, err := Validate(Submission{ImageURL: "  https://example.com/cat.jpg ", Caption: " a cat "})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cat.jpg", a.ImageURL)
	require.NotNil(t, a.Caption)
	assert.Equal(t, "a cat", *a.Caption)
	assert.Empty(t, a.TargetUserID)
}

func TestValidateEmptyCaptionIsAbsent(t *testing.T) {
	a, err := Validate(Submission{ImageURL: "https://example.com/cat.jpg", Caption: "   "})
	require.NoError(t, err)
	assert.Nil(t, a.Caption)
}

func TestValidateRejectsMalformedURLs(t *testing.T) {
	for _, raw := range []string{"", "not a url", "example.com/cat.jpg", "/relative/path.png", "   "} {
		t.Run(raw, func(t *testing.T) {
			_, err := Validate(Submission{ImageURL: raw})
			requireRejected(t, err, MsgInvalidURL)
		})
	}
}

func TestValidateRejectsLongURL(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", MaxImageURLLength)

	_, err := Validate(Submission{ImageURL: long})
	requireRejected(t, err, MsgURLTooLong)
}

func TestValidateURLAtLimit(t *testing.T) {
	prefix := "https://example.com/"
	exact := prefix + strings.Repeat("a", MaxImageURLLength-len(prefix))

	_, err := Validate(Submission{ImageURL: exact})
	assert.NoError(t, err)
}

func TestValidateRejectsLongCaption(t *testing.T) {
	_, err := Validate(Submission{
		ImageURL: "https://example.com/cat.jpg",
		Caption:  strings.Repeat("x", MaxCaptionLength+1),
	})
	requireRejected(t, err, MsgCaptionLong)

	_, err = Validate(Submission{
		ImageURL: "https://example.com/cat.jpg",
		Caption:  strings.Repeat("x", MaxCaptionLength),
	})
	assert.NoError(t, err)
}

func TestValidateFirstViolationWins(t *testing.T) {
	_, err := Validate(Submission{
		ImageURL: "not a url",
		Caption:  strings.Repeat("x", MaxCaptionLength+1),
	})
	requireRejected(t, err, MsgInvalidURL)
}

func TestValidateTargeted(t *testing.T) {
	target := "6F1C2B6E-8E43-4C5A-9E0B-1D2A3B4C5D6E"

	a, err := ValidateTargeted(Submission{ImageURL: "https://example.com/cat.jpg"}, target)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(target), a.TargetUserID)

	_, err = ValidateTargeted(Submission{ImageURL: "https://example.com/cat.jpg"}, "")
	requireRejected(t, err, MsgSelectTarget)

	_, err = ValidateTargeted(Submission{ImageURL: "https://example.com/cat.jpg"}, "user-42")
	requireRejected(t, err, MsgSelectTarget)

	// content rules come first
	_, err = ValidateTargeted(Submission{ImageURL: "nope"}, "")
	requireRejected(t, err, MsgInvalidURL)
}

func TestCaptionCounter(t *testing.T) {
	assert.Equal(t, "0/1000", CaptionCounter(""))
	assert.Equal(t, "5/1000", CaptionCounter("héllo"))
}

func TestSubmittable(t *testing.T) {
	assert.False(t, Submittable("", false))
	assert.False(t, Submittable("https://example.com", true))
	assert.True(t, Submittable("https://example.com", false))

	assert.False(t, SubmittableFor("https://example.com", "", false))
	assert.True(t, SubmittableFor("https://example.com", "u", false))
}

// The length limit applies to the trimmed caption, so surrounding whitespace
// never counts against it.
func TestCaptionLimitIgnoresSurroundingWhitespace(t *testing.T) {
	body := strings.Repeat("a", MaxCaptionLength-1)

	a, err := Validate(Submission{ImageURL: "https://example.com/cat.jpg", Caption: body + "     "})
	require.NoError(t, err)
	require.NotNil(t, a.Caption)
	assert.Equal(t, body, *a.Caption)

	a, err = Validate(Submission{ImageURL: "https://example.com/cat.jpg", Caption: "\t" + strings.Repeat("b", MaxCaptionLength) + "\n"})
	require.NoError(t, err)
	assert.Len(t, *a.Caption, MaxCaptionLength)

	_, err = Validate(Submission{ImageURL: "https://example.com/cat.jpg", Caption: " " + strings.Repeat("b", MaxCaptionLength+1) + " "})
	requireRejected(t, err, MsgCaptionLong)
}
