// Package services holds the budget engine: cost calculation, the
// hierarchical summary rollups and the cross-project unit-price comparison,
// plus the excel import/extraction and export helpers built on them.
package services

import (
	"database/sql"
)

// CostosInput are the raw inputs of one partida. Percentages are fractions
// (0.16 means 16%), not 0-100 integers.
type CostosInput struct {
	Cantidad      float64
	Unitario      float64
	SobrecostoPct float64
	IVAPct        float64
	TipoCambio    float64
}

// Costos are the derived monetary fields persisted with every partida.
type Costos struct {
	ImporteSinIVA     float64
	SobrecostoMonto   float64
	BaseConSobrecosto float64
	IVAMonto          float64
	ImporteTotal      float64
	TipoCambio        float64
	TotalMXN          float64
}

// CalcularCostos derives every monetary field from the raw inputs. It is a
// pure function invoked identically on create and on update; updates are
// always a full recompute, never a delta. A zero exchange rate is forced to
// 1 so a missing rate cannot zero out the MXN total.
func CalcularCostos(in CostosInput) Costos {
	importeSinIVA := in.Cantidad * in.Unitario
	sobrecostoMonto := importeSinIVA * in.SobrecostoPct
	baseConSobrecosto := importeSinIVA + sobrecostoMonto
	ivaMonto := baseConSobrecosto * in.IVAPct
	importeTotal := baseConSobrecosto + ivaMonto

	tipoCambio := in.TipoCambio
	if tipoCambio == 0 {
		tipoCambio = 1
	}

	return Costos{
		ImporteSinIVA:     importeSinIVA,
		SobrecostoMonto:   sobrecostoMonto,
		BaseConSobrecosto: baseConSobrecosto,
		IVAMonto:          ivaMonto,
		ImporteTotal:      importeTotal,
		TipoCambio:        tipoCambio,
		TotalMXN:          importeTotal * tipoCambio,
	}
}

// RateProvider resolves the current exchange rate of a currency against MXN.
// The calculator never reaches for the rate table itself; the rate is
// resolved at partida write time and frozen into the row.
type RateProvider interface {
	Rate(moneda string) (float64, error)
}

// DBRateProvider reads rates from the tipos_cambio table. Unknown
// currencies resolve to 1.
type DBRateProvider struct {
	DB *sql.DB
}

func (p DBRateProvider) Rate(moneda string) (float64, error) {
	var valor float64
	err := p.DB.QueryRow(`SELECT valor FROM tipos_cambio WHERE moneda = $1`, moneda).Scan(&valor)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 1, err
	}
	return valor, nil
}

// ResolverTipoCambio picks the exchange rate for a partida write: an
// explicit positive rate in the payload wins, otherwise the provider is
// consulted for the partida's currency. Zero always falls back to 1.
func ResolverTipoCambio(p RateProvider, moneda string, explicito float64) float64 {
	if explicito > 0 {
		return explicito
	}
	if p == nil {
		return 1
	}
	rate, err := p.Rate(moneda)
	if err != nil || rate == 0 {
		return 1
	}
	return rate
}
