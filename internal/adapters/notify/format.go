package notify

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const notEnoughData = "not enough data"

// formatIDR formatea con separador de miles "." como en el dashboard: "Rp 1.100.000".
// Importes menores a 1000 conservan dos decimales.
func formatIDR(v float64) string {
	if v != 0 && v < 1000 && v > -1000 {
		return "Rp " + humanize.FormatFloat("#.###,##", v)
	}
	return "Rp " + humanize.FormatFloat("#.###,", v)
}

func formatOptional(v *float64) string {
	if v == nil {
		return notEnoughData
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalIDR(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatIDR(*v)
}

func formatPercent(v *float64) string {
	if v == nil {
		return notEnoughData
	}
	return fmt.Sprintf("%.2f%%", *v)
}
