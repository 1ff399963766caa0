package services

import (
	"math"
	"testing"
)

const tolerance = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestCalcularCostos(t *testing.T) {
	tests := []struct {
		name string
		in   CostosInput
		want Costos
	}{
		{
			name: "reference calculation",
			in:   CostosInput{Cantidad: 10, Unitario: 5, SobrecostoPct: 0.1, IVAPct: 0.16, TipoCambio: 20},
			want: Costos{
				ImporteSinIVA:     50,
				SobrecostoMonto:   5,
				BaseConSobrecosto: 55,
				IVAMonto:          8.8,
				ImporteTotal:      63.8,
				TipoCambio:        20,
				TotalMXN:          1276,
			},
		},
		{
			name: "zero exchange rate treated as 1",
			in:   CostosInput{Cantidad: 2, Unitario: 100, SobrecostoPct: 0, IVAPct: 0.16, TipoCambio: 0},
			want: Costos{
				ImporteSinIVA:     200,
				SobrecostoMonto:   0,
				BaseConSobrecosto: 200,
				IVAMonto:          32,
				ImporteTotal:      232,
				TipoCambio:        1,
				TotalMXN:          232,
			},
		},
		{
			name: "all zeros",
			in:   CostosInput{},
			want: Costos{TipoCambio: 1},
		},
		{
			name: "no surcharge no vat",
			in:   CostosInput{Cantidad: 3, Unitario: 7, TipoCambio: 1},
			want: Costos{
				ImporteSinIVA:     21,
				BaseConSobrecosto: 21,
				ImporteTotal:      21,
				TipoCambio:        1,
				TotalMXN:          21,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcularCostos(tt.in)
			checks := []struct {
				campo string
				got   float64
				want  float64
			}{
				{"ImporteSinIVA", got.ImporteSinIVA, tt.want.ImporteSinIVA},
				{"SobrecostoMonto", got.SobrecostoMonto, tt.want.SobrecostoMonto},
				{"BaseConSobrecosto", got.BaseConSobrecosto, tt.want.BaseConSobrecosto},
				{"IVAMonto", got.IVAMonto, tt.want.IVAMonto},
				{"ImporteTotal", got.ImporteTotal, tt.want.ImporteTotal},
				{"TipoCambio", got.TipoCambio, tt.want.TipoCambio},
				{"TotalMXN", got.TotalMXN, tt.want.TotalMXN},
			}
			for _, ch := range checks {
				if !almostEqual(ch.got, ch.want) {
					t.Errorf("%s = %v, want %v", ch.campo, ch.got, ch.want)
				}
			}
		})
	}
}

func TestCalcularCostosDeterministic(t *testing.T) {
	in := CostosInput{Cantidad: 12.5, Unitario: 345.67, SobrecostoPct: 0.08, IVAPct: 0.16, TipoCambio: 17.3}
	first := CalcularCostos(in)
	for i := 0; i < 10; i++ {
		if got := CalcularCostos(in); got != first {
			t.Fatalf("iteration %d: result changed from %+v to %+v", i, first, got)
		}
	}
}

type fakeRates map[string]float64

func (f fakeRates) Rate(moneda string) (float64, error) {
	if v, ok := f[moneda]; ok {
		return v, nil
	}
	return 1, nil
}

func TestResolverTipoCambio(t *testing.T) {
	rates := fakeRates{"USD": 20.5, "EUR": 22}

	tests := []struct {
		name      string
		moneda    string
		explicito float64
		want      float64
	}{
		{"explicit rate wins", "USD", 17.5, 17.5},
		{"provider rate used when no explicit", "USD", 0, 20.5},
		{"unknown currency falls back to 1", "GBP", 0, 1},
		{"negative explicit ignored", "EUR", -3, 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolverTipoCambio(rates, tt.moneda, tt.explicito)
			if !almostEqual(got, tt.want) {
				t.Errorf("ResolverTipoCambio(%q, %v) = %v, want %v", tt.moneda, tt.explicito, got, tt.want)
			}
		})
	}

	t.Run("nil provider falls back to 1", func(t *testing.T) {
		if got := ResolverTipoCambio(nil, "USD", 0); got != 1 {
			t.Errorf("got %v, want 1", got)
		}
	})
}
