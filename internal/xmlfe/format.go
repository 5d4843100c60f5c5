package xmlfe

import (
	"strings"
	"time"
)

// dateLayouts cubre las formas de FechaEmision observadas en comprobantes
// reales: con offset, sin offset y solo fecha.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatNumber reemplaza el primer punto decimal por coma. Es una
// sustitución textual, el valor no se reinterpreta como número aquí.
func FormatNumber(value string) string {
	if value == "" {
		return ""
	}
	return strings.Replace(value, ".", ",", 1)
}

// FormatDate convierte una fecha ISO-8601 (la 'Z' final equivale a +00:00)
// al formato dd-mm-yyyy. Si la cadena no se puede interpretar la retorna
// sin cambios.
func FormatDate(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02-01-2006")
		}
	}
	return value
}
