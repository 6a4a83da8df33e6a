package suggestion

import (
	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Context is what a handler sees when deciding whether to show suggestions
type Context struct {
	Form    *types.Form
	Field   *types.Field
	Source  types.TriggerSource
	Product types.FillingProduct
}

// Handler is one surface able to present suggestions
type Handler interface {
	Name() string
	CanHandle(ctx Context) bool
	// Handle presents the suggestions and reports whether it accepted them
	Handle(ctx Context, suggestions []types.Suggestion) bool
}

// Outcome reports which handler took the suggestions
type Outcome struct {
	Handler string
	// Popup is true when the caller itself should show the suggestions
	Popup bool
	Shown bool
}

// Chain evaluates handlers in order; the first that accepts wins
type Chain struct {
	handlers []Handler
}

// NewChain creates a chain. A PopupHandler is appended when none is given.
func NewChain(handlers ...Handler) *Chain {
	hasPopup := false
	for _, h := range handlers {
		if _, ok := h.(PopupHandler); ok {
			hasPopup = true
		}
	}
	if !hasPopup {
		handlers = append(handlers, PopupHandler{})
	}
	return &Chain{handlers: handlers}
}

// Dispatch hands the suggestions to the first accepting handler
func (c *Chain) Dispatch(ctx Context, suggestions []types.Suggestion) Outcome {
	for _, h := range c.handlers {
		if !h.CanHandle(ctx) {
			continue
		}
		if h.Handle(ctx, suggestions) {
			_, popup := h.(PopupHandler)
			return Outcome{Handler: h.Name(), Popup: popup, Shown: len(suggestions) > 0}
		}
	}
	return Outcome{}
}

// PopupHandler returns suggestions to the caller for its dropdown
type PopupHandler struct{}

// Name implements Handler
func (PopupHandler) Name() string { return "popup" }

// CanHandle implements Handler
func (PopupHandler) CanHandle(Context) bool { return true }

// Handle implements Handler
func (PopupHandler) Handle(Context, []types.Suggestion) bool { return true }

// TouchToFillDelegate is a bottom-sheet surface for cards
type TouchToFillDelegate interface {
	IsAvailable() bool
	ShowCards(form *types.Form, field *types.Field, cards []types.Suggestion) bool
}

// TouchToFillHandler claims card-number fields focused by touch
type TouchToFillHandler struct {
	Delegate TouchToFillDelegate
}

// Name implements Handler
func (TouchToFillHandler) Name() string { return "touch_to_fill" }

// CanHandle implements Handler
func (h TouchToFillHandler) CanHandle(ctx Context) bool {
	return h.Delegate != nil &&
		ctx.Source == types.SourceTouchToFill &&
		ctx.Field != nil &&
		ctx.Field.Type == types.CreditCardNumber &&
		h.Delegate.IsAvailable()
}

// Handle implements Handler
func (h TouchToFillHandler) Handle(ctx Context, suggestions []types.Suggestion) bool {
	cards := make([]types.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Kind == types.SuggestionCardEntry {
			cards = append(cards, s)
		}
	}
	if len(cards) == 0 {
		return false
	}
	return h.Delegate.ShowCards(ctx.Form, ctx.Field, cards)
}
