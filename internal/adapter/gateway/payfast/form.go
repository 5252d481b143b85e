package payfast

import (
	"html/template"
	"io"

	"restaurant-pos/internal/core/ports"
)

var formTemplate = template.Must(template.New("payfast").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting to payment</title></head>
<body onload="document.forms[0].submit()">
<form action="{{.ActionURL}}" method="post">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

type formData struct {
	ActionURL string
	Fields    []ports.FormField
}

// RenderForm writes an HTML page that posts the signed request to the
// gateway as soon as it loads.
func RenderForm(w io.Writer, req *ports.SignedPaymentRequest) error {
	return formTemplate.Execute(w, formData{
		ActionURL: req.ActionURL,
		Fields:    req.Fields(),
	})
}
