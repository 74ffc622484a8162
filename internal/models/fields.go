package models

// Columns maps the API-facing camelCase field names onto their storage
// columns. Mutations only accept fields listed here; anything else is
// rejected before a query is built.
var Columns = map[string]string{
	"fullName":     "full_name",
	"phone":        "phone",
	"email":        "email",
	"address":      "address",
	"serviceType":  "service_type",
	"bedrooms":     "bedrooms",
	"cleaningDate": "cleaning_date",
	"cleaningTime": "cleaning_time",
	"description":  "description",
	"status":       "status",
}

// FieldNames maps storage columns back to their API-facing names.
var FieldNames = invert(Columns)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
