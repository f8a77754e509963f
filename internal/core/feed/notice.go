package feed

import (
	"errors"

	"snippets/internal/core/apperr"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is the toast shown after an action.
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func (n Notice) IsZero() bool {
	return n.Title == "" && n.Description == ""
}

type Action int

const (
	ActionAdd Action = iota
	ActionAdminAdd
	ActionSave
	ActionDelete
)

var successNotices = map[Action]Notice{
	ActionAdd:      {Title: "Success!", Description: "Your snippet has been added.", Variant: VariantDefault},
	ActionAdminAdd: {Title: "Success!", Description: "Content added to user's wall.", Variant: VariantDefault},
	ActionSave:     {Title: "Saved!", Description: "Snippet added to your wall.", Variant: VariantDefault},
	ActionDelete:   {Title: "Deleted", Description: "Snippet removed successfully.", Variant: VariantDefault},
}

var failureText = map[Action]string{
	ActionAdd:      "Failed to add content. Please try again.",
	ActionAdminAdd: "Failed to add content. Please try again.",
	ActionSave:     "Failed to save to your wall. Please try again.",
	ActionDelete:   "Failed to delete. Please try again.",
}

func Success(a Action) Notice {
	return successNotices[a]
}

func SignInRequired(a Action) Notice {
	desc := "Please sign in to add content."
	if a == ActionSave {
		desc = "Please sign in to save snippets to your wall."
	}
	return Notice{Title: "Sign in required", Description: desc, Variant: VariantDestructive}
}

// Failure picks the notice for err. Backend failures share one generic text
// per action; only a timeout gets its own.
func Failure(a Action, err error) Notice {
	var ve *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return SignInRequired(a)
	case errors.As(err, &ve):
		return Notice{Title: "Validation error", Description: ve.Message, Variant: VariantDestructive}
	case apperr.IsTimeout(err):
		return Notice{Title: "Timed out", Description: "The request took too long. Please try again.", Variant: VariantDestructive}
	case errors.Is(err, apperr.ErrSaveInFlight):
		return Notice{}
	}
	return Notice{Title: "Error", Description: failureText[a], Variant: VariantDestructive}
}
