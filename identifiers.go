package sqlbridge

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// KebabIdentifiers lower-cases a column name and replaces underscores
// with hyphens, so CREATED_AT becomes created-at. It is the default
// identifier transform.
func KebabIdentifiers(name string) string {
	return strings.ReplaceAll(lower.String(name), "_", "-")
}

// SnakeIdentifiers lower-cases a column name, keeping underscores,
// so CREATED_AT becomes created_at.
func SnakeIdentifiers(name string) string {
	return lower.String(name)
}

// CamelIdentifiers converts a column name to lower camel case,
// so CREATED_AT becomes createdAt.
func CamelIdentifiers(name string) string {
	return inflect.CamelizeDownFirst(lower.String(name))
}
