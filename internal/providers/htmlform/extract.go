package htmlform

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// ErrEmptyDocument is returned for an empty HTML payload
var ErrEmptyDocument = errors.New("html document is empty")

const controlSelector = "input, textarea, select"

// Options describe where the document came from
type Options struct {
	// URL of the page; used for the main frame origin and to resolve actions
	URL string
	// FrameToken identifies the frame every extracted id belongs to
	FrameToken string
	// ContentType is the response header, if known, for charset selection
	ContentType string
	// RendererBase offsets renderer ids so repeated imports do not collide
	RendererBase uint64
}

// Extractor turns HTML documents into form snapshots
type Extractor struct {
	sanitizer *bluemonday.Policy
	log       *logging.Logger
}

// NewExtractor creates an extractor
func NewExtractor(log *logging.Logger) *Extractor {
	if log == nil {
		log = logging.Nop()
	}
	return &Extractor{
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.Named("htmlform"),
	}
}

// Extract parses data and returns one form per <form> element that owns at
// least one fillable control. Controls outside any <form> are collected
// into a trailing unnamed form.
func (e *Extractor) Extract(data []byte, opts Options) ([]*types.Form, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	if err := utils.ValidateHTMLSize(data); err != nil {
		return nil, err
	}
	if opts.FrameToken == "" {
		opts.FrameToken = "main"
	}

	reader, encName := utf8Reader(data, opts.ContentType)
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := &builder{
		ext:    e,
		doc:    doc,
		opts:   opts,
		next:   opts.RendererBase,
		origin: originOf(opts.URL),
	}

	var forms []*types.Form
	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if form := b.form(s, s.Find(controlSelector)); form != nil {
			forms = append(forms, form)
		}
		return len(forms) < utils.MaxFormsPerRequest
	})

	if len(forms) < utils.MaxFormsPerRequest {
		unowned := doc.Find(controlSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Closest("form").Length() == 0
		})
		if form := b.form(nil, unowned); form != nil {
			forms = append(forms, form)
		}
	}

	e.log.Debug("extracted forms",
		zap.Int("forms", len(forms)),
		zap.String("encoding", encName),
		zap.String("url", opts.URL))
	return forms, nil
}

type builder struct {
	ext    *Extractor
	doc    *goquery.Document
	opts   Options
	next   uint64
	origin string
}

func (b *builder) id() uint64 {
	b.next++
	return b.next
}

// form builds a snapshot from the given controls; el is nil for the
// synthetic form holding unowned controls
func (b *builder) form(el *goquery.Selection, controls *goquery.Selection) *types.Form {
	var fields []types.Field
	controls.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if field, ok := b.field(s); ok {
			fields = append(fields, field)
		}
		return len(fields) < utils.MaxFieldsPerForm
	})
	if len(fields) == 0 {
		return nil
	}

	form := &types.Form{
		GlobalID:        types.FormGlobalID{FrameToken: b.opts.FrameToken, RendererID: b.id()},
		URL:             clip(b.opts.URL),
		MainFrameOrigin: b.origin,
		Fields:          fields,
	}
	if el != nil {
		form.Name = clip(firstNonEmpty(el.AttrOr("name", ""), el.AttrOr("id", "")))
		form.Action = clip(resolve(b.opts.URL, el.AttrOr("action", "")))
	}
	return form
}

func (b *builder) field(s *goquery.Selection) (types.Field, bool) {
	control, ok := controlType(s)
	if !ok {
		return types.Field{}, false
	}

	idAttr := s.AttrOr("id", "")
	_, disabled := s.Attr("disabled")
	visible := isVisible(s)

	field := types.Field{
		GlobalID:     types.FieldGlobalID{FrameToken: b.opts.FrameToken, RendererID: b.id()},
		Name:         clip(firstNonEmpty(s.AttrOr("name", ""), idAttr)),
		IDAttribute:  clip(idAttr),
		Label:        clip(b.label(s, idAttr)),
		Placeholder:  clip(strings.TrimSpace(s.AttrOr("placeholder", ""))),
		Autocomplete: strings.TrimSpace(s.AttrOr("autocomplete", "")),
		Control:      control,
		Visible:      visible,
		Focusable:    visible && !disabled,
	}
	if strings.EqualFold(s.AttrOr("role", ""), "presentation") {
		field.Role = types.RolePresentation
	}
	if n, err := strconv.Atoi(s.AttrOr("maxlength", "")); err == nil && n > 0 {
		field.MaxLength = n
	}

	switch control {
	case types.ControlSelect:
		field.Options, field.Value = options(s)
	case types.ControlTextArea:
		field.Value = clip(s.Text())
	default:
		field.Value = clip(s.AttrOr("value", ""))
	}
	return field, true
}

// label finds the text describing a control: a <label for>, an enclosing
// <label>, then aria-label
func (b *builder) label(s *goquery.Selection, idAttr string) string {
	if idAttr != "" {
		var text string
		b.doc.Find("label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if l.AttrOr("for", "") == idAttr {
				text = b.ext.text(l)
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}
	if l := s.Closest("label"); l.Length() > 0 {
		if text := b.ext.text(l); text != "" {
			return text
		}
	}
	return collapse(s.AttrOr("aria-label", ""))
}

// text returns the visible text of an element. Markup is stripped by the
// sanitizer so script and style bodies never leak into labels.
func (e *Extractor) text(s *goquery.Selection) string {
	raw, err := s.Html()
	if err != nil {
		return collapse(s.Text())
	}
	return collapse(html.UnescapeString(e.sanitizer.Sanitize(raw)))
}

func controlType(s *goquery.Selection) (types.FormControlType, bool) {
	switch goquery.NodeName(s) {
	case "textarea":
		return types.ControlTextArea, true
	case "select":
		return types.ControlSelect, true
	case "input":
	default:
		return "", false
	}

	switch strings.ToLower(strings.TrimSpace(s.AttrOr("type", "text"))) {
	case "", "text", "search", "url":
		return types.ControlText, true
	case "tel":
		return types.ControlTelephone, true
	case "email":
		return types.ControlEmail, true
	case "month":
		return types.ControlMonth, true
	case "number":
		return types.ControlNumber, true
	case "password":
		return types.ControlPassword, true
	default:
		// hidden, submit, checkbox, radio, file and friends carry no fillable text
		return "", false
	}
}

func options(s *goquery.Selection) ([]types.SelectOption, string) {
	var (
		opts     []types.SelectOption
		selected string
		chosen   bool
	)
	s.Find("option").EachWithBreak(func(_ int, o *goquery.Selection) bool {
		text := collapse(o.Text())
		value, ok := o.Attr("value")
		if !ok {
			value = text
		}
		opts = append(opts, types.SelectOption{Value: clip(value), Text: clip(text)})
		if _, sel := o.Attr("selected"); sel && !chosen {
			selected, chosen = clip(value), true
		}
		return len(opts) < utils.MaxSelectOptions
	})
	if !chosen && len(opts) > 0 {
		selected = opts[0].Value
	}
	return opts, selected
}

func isVisible(s *goquery.Selection) bool {
	if _, hidden := s.Attr("hidden"); hidden {
		return false
	}
	style := strings.ReplaceAll(strings.ToLower(s.AttrOr("style", "")), " ", "")
	return !strings.Contains(style, "display:none") && !strings.Contains(style, "visibility:hidden")
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func resolve(base, action string) string {
	action = strings.TrimSpace(action)
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return action
	}
	ref, err := url.Parse(action)
	if err != nil {
		return action
	}
	return b.ResolveReference(ref).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= utils.MaxStringLength {
		return s
	}
	return string([]rune(s)[:utils.MaxStringLength])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
