package models

import "strconv"

func formatPercent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64)
}
