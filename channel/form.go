// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"html/template"
	"io"
	"maps"
	"net/url"
	"slices"
)

const formContentType = "application/x-www-form-urlencoded"

var formPostTemplate = template.Must(template.New("form_post").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Submit this form</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue</button></noscript>
</form>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

type formPost struct {
	Action string
	Fields []formField
}

func renderFormPost(w io.Writer, action *url.URL, fields map[string]string) error {
	data := formPost{Action: action.String()}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		data.Fields = append(data.Fields, formField{Name: k, Value: fields[k]})
	}
	return formPostTemplate.Execute(w, data)
}
