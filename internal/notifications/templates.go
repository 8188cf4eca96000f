package notifications

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type itemView struct {
	FlavorName  string
	ProductType string
	Quantity    int
}

// orderView is the data every template renders from.
type orderView struct {
	OrderNumber         string
	ParentOrderNumber   string
	StoreName           string
	RepName             string
	DeliveryDate        string
	ProductionStartDate string
	Total               string
	TrackingNumber      string
	IsRecurring         bool
	Items               []itemView
}

func render(name string, view orderView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
