// Package types provides the shared autofill data model.
//
// Every engine component and adapter speaks in these types, so the package
// has no dependencies beyond the standard library.
//
// Form Model:
//   - Form, Field: value snapshots of a rendered form and its controls
//   - FormGlobalID, FieldGlobalID: identities stable across same-page mutations
//   - FieldType, FieldTypeGroup, FillingProduct: classifier output taxonomy
//
// Records:
//   - Record: tagged union over AddressProfile and CreditCard
//   - RecordKind: the union discriminator
//
// Filling:
//   - ActionPersistence: Fill or Preview
//   - TriggerSource, TriggerDetails, FillingMethod: how a fill was requested
//   - SkipReason: why a candidate field was left untouched
//   - FillStatus: outcome of a fill request
//   - FieldWrite: one intended value handed to the driver
//
// Example Usage:
//
//	form := &types.Form{
//	    GlobalID: types.FormGlobalID{FrameToken: "main", RendererID: 1},
//	    Name:     "checkout",
//	    Fields: []types.Field{
//	        {Name: "fname", Control: types.ControlText, Focusable: true},
//	    },
//	}
//	rec := types.AddressRecord(&types.AddressProfile{FirstName: "Elvis"})
//	fmt.Println(rec.Address.Raw(types.NameFirst))
package types
