package model

// YardConfig describes the loading-ramp grid: Vaos bays with
// RampasPorVao ramps each.  Ramp numbering is flattened across bays,
// so ramp n sits in bay (n-1)/RampasPorVao + 1.
type YardConfig struct {
	Vaos         int `json:"vaos"`
	RampasPorVao int `json:"rampas_por_vao"`
}

// TotalRampas returns the number of addressable ramps.
func (c YardConfig) TotalRampas() int { return c.Vaos * c.RampasPorVao }

// GalpaoDaRampa returns the bay a flattened ramp number belongs to,
// or 0 when the ramp number is out of range.
func (c YardConfig) GalpaoDaRampa(rampa int) int {
	if rampa < 1 || rampa > c.TotalRampas() {
		return 0
	}
	return (rampa-1)/c.RampasPorVao + 1
}

// Contains reports whether the (ramp, bay) pair addresses an existing
// ramp under this configuration.
func (c YardConfig) Contains(rampa, galpao int) bool {
	return galpao >= 1 && galpao <= c.Vaos && c.GalpaoDaRampa(rampa) == galpao
}
