package finance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryForTypeName(t *testing.T) {
	cases := []struct {
		name string
		want ConcessionCategory
	}{
		{"Restaurante del lago", CategoryRestaurant},
		{"Cafetería central", CategoryRestaurant},
		{"cafeteria norte", CategoryRestaurant},
		{"Tienda de souvenirs", CategoryRetail},
		{"Comercio ambulante", CategoryRetail},
		{"Centro deportivo", CategorySports},
		{"Área recreativa", CategorySports},
		{"Estacionamiento", CategoryGeneral},
		{"", CategoryGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CategoryForTypeName(tc.name))
		})
	}
}

func TestCategoryCodes(t *testing.T) {
	require := require.New(t)
	require.Equal("ING-CONC-REST", CategoryRestaurant.Code())
	require.Equal("ING-CONC-COM", CategoryRetail.Code())
	require.Equal("ING-CONC-DEP", CategorySports.Code())
	require.Equal("ING-CONC-001", CategoryGeneral.Code())
}
