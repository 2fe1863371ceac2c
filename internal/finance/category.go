package finance

import "strings"

// ConcessionCategory is the fixed taxonomy mapping concession types onto
// income categories. Free-text type names are classified once at the sync
// boundary; everything downstream works with the enumeration.
type ConcessionCategory int

const (
	CategoryGeneral ConcessionCategory = iota
	CategoryRestaurant
	CategoryRetail
	CategorySports
)

// CategoryForTypeName classifies a concession type name.
func CategoryForTypeName(name string) ConcessionCategory {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "restaurante"), strings.Contains(n, "cafetería"), strings.Contains(n, "cafeteria"):
		return CategoryRestaurant
	case strings.Contains(n, "tienda"), strings.Contains(n, "comercio"):
		return CategoryRetail
	case strings.Contains(n, "deportiv"), strings.Contains(n, "recreativ"):
		return CategorySports
	}
	return CategoryGeneral
}

// Code returns the income category lookup code.
func (c ConcessionCategory) Code() string {
	switch c {
	case CategoryRestaurant:
		return "ING-CONC-REST"
	case CategoryRetail:
		return "ING-CONC-COM"
	case CategorySports:
		return "ING-CONC-DEP"
	default:
		return "ING-CONC-001"
	}
}

// Name returns the human-readable category name.
func (c ConcessionCategory) Name() string {
	switch c {
	case CategoryRestaurant:
		return "Concesiones - Restaurantes y cafeterías"
	case CategoryRetail:
		return "Concesiones - Tiendas y comercios"
	case CategorySports:
		return "Concesiones - Deportivos y recreativos"
	default:
		return "Concesiones - General"
	}
}
