package suggestion

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

const (
	// DefaultDisusedCardWindow hides expired cards not used for this long
	DefaultDisusedCardWindow = 180 * 24 * time.Hour
	// cardPrefixThreshold is the longest non-matching numeric text that
	// still shows every card
	cardPrefixThreshold = 6
)

// Options tune labeling and suppression
type Options struct {
	ObfuscationLength int
	NameBeforeDigits  bool
	DisusedCardWindow time.Duration
	Now               func() time.Time
}

// DefaultOptions returns desktop defaults
func DefaultOptions() Options {
	return Options{
		ObfuscationLength: 4,
		NameBeforeDigits:  true,
		DisusedCardWindow: DefaultDisusedCardWindow,
		Now:               time.Now,
	}
}

// PlusAddressDelegate offers a generated email alias for an origin
type PlusAddressDelegate interface {
	SuggestPlusAddress(ctx context.Context, origin string) (string, error)
}

// Request describes one suggestion query. Records come from the store in
// storage order.
type Request struct {
	Form    *types.Form
	Trigger types.FieldGlobalID
	Kind    types.RecordKind
	Source  types.TriggerSource
	Records []types.Record
}

// Generator builds suggestion lists
type Generator struct {
	opts Options
	plus PlusAddressDelegate
}

// NewGenerator creates a generator. plus may be nil.
func NewGenerator(opts Options, plus PlusAddressDelegate) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ObfuscationLength <= 0 {
		opts.ObfuscationLength = 4
	}
	if opts.DisusedCardWindow <= 0 {
		opts.DisusedCardWindow = DefaultDisusedCardWindow
	}
	return &Generator{opts: opts, plus: plus}
}

// GetSuggestions returns the ordered entries for the trigger field. An
// unknown field or a field of another product yields nothing unless the
// source is a manual fallback, which lists every record unfiltered.
func (g *Generator) GetSuggestions(ctx context.Context, req Request) []types.Suggestion {
	field := req.Form.Field(req.Trigger)
	if field == nil {
		return nil
	}
	product := req.Kind.Product()
	fallback := req.Source.IsManualFallback() && field.Type.Product() != product
	if !fallback && (field.Type == types.UnknownType || field.Type.Product() != product) {
		return nil
	}

	fieldType := field.Type
	typed := field.Value
	if fallback {
		fieldType = types.UnknownType
		typed = ""
	} else if field.IsAutofilled() {
		typed = ""
	}

	var cands []candidate
	switch req.Kind {
	case types.RecordAddress:
		cands = g.addressCandidates(req, fieldType, typed, fallback)
	case types.RecordCreditCard:
		cands = g.cardCandidates(req, fieldType, typed, fallback)
	}
	if len(cands) == 0 {
		return nil
	}
	if warning, ok := warningFor(req.Form, product); ok {
		return []types.Suggestion{warning}
	}

	out := make([]types.Suggestion, 0, len(cands)+1)
	if plus, ok := g.plusAddress(ctx, req.Form, field, req.Kind, fallback); ok {
		out = append(out, plus)
	}
	kind := types.SuggestionAddressEntry
	if req.Kind == types.RecordCreditCard {
		kind = types.SuggestionCardEntry
	}
	for _, c := range cands {
		out = append(out, types.Suggestion{
			Kind:       kind,
			Value:      c.value,
			Label:      c.label,
			RecordGUID: c.record.GUID(),
			Product:    product,
		})
	}
	return out
}

func (g *Generator) addressCandidates(req Request, t types.FieldType, typed string, fallback bool) []candidate {
	now := g.opts.Now()
	omitLabels := !fallback && sectionPartiallyAutofilled(req.Form, req.Trigger)

	var cands []candidate
	for _, rec := range req.Records {
		if rec.Kind != types.RecordAddress || rec.Address == nil {
			continue
		}
		value := addressValue(rec.Address, t)
		if value == "" {
			continue
		}
		if typed != "" && !utils.HasNormalizedPrefix(value, typed) {
			continue
		}
		label := ""
		if !omitLabels {
			label = addressLabel(rec.Address, t)
		}
		count, used := rec.UseStats()
		cands = append(cands, candidate{
			record: rec,
			score:  FrecencyScore(count, used, now),
			value:  value,
			label:  label,
		})
	}
	rank(cands)
	return dedupAddresses(cands)
}

func (g *Generator) cardCandidates(req Request, t types.FieldType, typed string, fallback bool) []candidate {
	now := g.opts.Now()

	var cands []candidate
	for _, rec := range req.Records {
		if rec.Kind != types.RecordCreditCard || rec.Card == nil {
			continue
		}
		card := rec.Card
		expired := card.IsExpired(now)
		if typed == "" && expired && now.Sub(card.UseDate) > g.opts.DisusedCardWindow {
			continue
		}
		if t == types.CreditCardNumber {
			if card.LastFourDigits() == "" || !cardNumberMatches(card, typed) {
				continue
			}
		}

		value, label := g.cardValueAndLabel(card, t)
		if value == "" {
			continue
		}
		if !fallback && t != types.CreditCardNumber && typed != "" && !utils.HasNormalizedPrefix(value, typed) {
			continue
		}
		cands = append(cands, candidate{
			record:  rec,
			expired: expired,
			score:   FrecencyScore(card.UseCount, card.UseDate, now),
			value:   value,
			label:   label,
		})
	}
	rank(cands)
	return cands
}

// cardNumberMatches keeps a card unless the typed text is a long run of
// digits the card's number does not start with.
func cardNumberMatches(card *types.CreditCard, typed string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '*', '•':
			return -1
		}
		return r
	}, typed)
	if stripped == "" || utils.DigitsOnly(stripped) != stripped {
		return true
	}
	if strings.HasPrefix(types.StripCardNumber(card.Number), stripped) {
		return true
	}
	return len(stripped) <= cardPrefixThreshold
}

// sectionPartiallyAutofilled reports whether any field sharing the trigger's
// section already holds an autofilled value.
func sectionPartiallyAutofilled(form *types.Form, trigger types.FieldGlobalID) bool {
	field := form.Field(trigger)
	if field == nil {
		return false
	}
	for _, i := range form.SectionFields(field.Section) {
		if form.Fields[i].IsAutofilled() {
			return true
		}
	}
	return false
}

// plusAddress asks the delegate for a synthetic email alias
func (g *Generator) plusAddress(ctx context.Context, form *types.Form, field *types.Field, kind types.RecordKind, fallback bool) (types.Suggestion, bool) {
	if g.plus == nil || fallback || kind != types.RecordAddress || field.Type != types.EmailAddress {
		return types.Suggestion{}, false
	}
	origin := field.Origin
	if origin == "" {
		origin = originOf(form.URL)
	}
	if origin == "" {
		return types.Suggestion{}, false
	}
	alias, err := g.plus.SuggestPlusAddress(ctx, origin)
	if err != nil || alias == "" {
		return types.Suggestion{}, false
	}
	return types.Suggestion{
		Kind:    types.SuggestionPlusAddress,
		Value:   alias,
		Product: types.ProductPlusAddress,
	}, true
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
