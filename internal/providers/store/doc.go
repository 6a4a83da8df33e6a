// Package store provides the record store the autofill manager reads from.
//
// Memory keeps addresses and credit cards in insertion order and hands out
// copies, so callers never mutate stored records except through
// UpdateUsage. Record files are YAML documents with "addresses" and
// "credit_cards" lists.
package store
