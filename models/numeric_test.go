package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFlexFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"number", `12.5`, 12.5},
		{"integer", `42`, 42},
		{"numeric string", `"350.75"`, 350.75},
		{"empty string coerces to zero", `""`, 0},
		{"garbage string coerces to zero", `"abc"`, 0},
		{"null coerces to zero", `null`, 0},
		{"boolean coerces without failing", `true`, 1},
		{"negative", `-7.25`, -7.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.raw, err)
			}
			if math.Abs(f.Float64()-tt.want) > 0.001 {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.raw, f.Float64(), tt.want)
			}
		})
	}
}

func TestFlexFloatInStruct(t *testing.T) {
	// a payload full of junk numerics still binds
	var in PartidaInput
	payload := `{"categoria":"ALBANILERIA","cantidad":"10","unitario":350.5,"sobrecosto_pct":"","iva_pct":null,"tipo_cambio":"x"}`
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if in.Cantidad.Float64() != 10 {
		t.Errorf("Cantidad = %v, want 10", in.Cantidad.Float64())
	}
	if in.Unitario.Float64() != 350.5 {
		t.Errorf("Unitario = %v, want 350.5", in.Unitario.Float64())
	}
	if in.SobrecostoPct.Float64() != 0 || in.IVAPct.Float64() != 0 || in.TipoCambio.Float64() != 0 {
		t.Errorf("junk numerics should coerce to zero: %v %v %v",
			in.SobrecostoPct.Float64(), in.IVAPct.Float64(), in.TipoCambio.Float64())
	}
}
