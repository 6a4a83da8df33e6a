/*
Package htmlform extracts form snapshots from raw HTML.

It lets a driver that only has page source, such as a crawler or a test
harness, register forms with the autofill manager. Each <form> element
becomes a types.Form; controls outside any form are grouped into one
unnamed form, mirroring how browsers treat unowned fields.

Encoding is taken from a BOM, the Content-Type header or a <meta> tag.
Undeclared documents that are not valid UTF-8 go through chardet. Label text
is stripped of markup with a strict bluemonday policy.

Example Usage:

	ext := htmlform.NewExtractor(logger)
	forms, err := ext.Extract(body, htmlform.Options{
		URL:         "https://shop.example/checkout",
		ContentType: resp.Header.Get("Content-Type"),
	})
	if err != nil {
		return err
	}
	return mgr.OnFormsSeen(ctx, forms)
*/
package htmlform
