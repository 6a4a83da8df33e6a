package store

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
	"github.com/GriffinCanCode/formfill/internal/shared/utils"
)

// Document is the on-disk layout of a record file
type Document struct {
	Addresses   []types.AddressProfile `yaml:"addresses"`
	CreditCards []types.CreditCard     `yaml:"credit_cards"`
}

// DecodeYAML reads records from a YAML document, addresses first
func DecodeYAML(r io.Reader) ([]types.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	records := make([]types.Record, 0, len(doc.Addresses)+len(doc.CreditCards))
	for i := range doc.Addresses {
		a := doc.Addresses[i]
		if err := utils.ValidateEmail(a.Email, false); err != nil {
			return nil, fmt.Errorf("address %d: %w", i, err)
		}
		records = append(records, types.AddressRecord(&a))
	}
	for i := range doc.CreditCards {
		c := doc.CreditCards[i]
		if c.RecordType == "" {
			c.RecordType = types.CardLocal
		}
		if c.ExpMonth < 0 || c.ExpMonth > 12 {
			return nil, fmt.Errorf("credit card %d: invalid expiration month %d", i, c.ExpMonth)
		}
		records = append(records, types.CardRecord(&c))
	}
	return records, nil
}

// LoadYAML builds a Memory store from a YAML file
func LoadYAML(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	records, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(records...)
}

// EncodeYAML writes records in the Document layout
func EncodeYAML(w io.Writer, records []types.Record) error {
	var doc Document
	for _, rec := range records {
		switch {
		case rec.Kind == types.RecordAddress && rec.Address != nil:
			doc.Addresses = append(doc.Addresses, *rec.Address)
		case rec.Kind == types.RecordCreditCard && rec.Card != nil:
			doc.CreditCards = append(doc.CreditCards, *rec.Card)
		}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	_, err = w.Write(data)
	return err
}
