// Package classifier provides a heuristic field classifier.
//
// Classification looks at the autocomplete attribute first and falls back
// to patterns over the field's name, id, label and placeholder. Sectioning
// groups fields by explicit autocomplete sections, by filling product, and
// starts a new section whenever a field type repeats.
//
// Example Usage:
//
//	h := classifier.NewHeuristic()
//	fieldTypes := h.ClassifyFields(form)
//	sections := h.AssignSections(form, fieldTypes)
package classifier
