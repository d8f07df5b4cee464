package model

import "time"

// Lifecycle states of a fleet vehicle in the yard.  A vehicle starts
// in the patio, moves onto a ramp for loading and leaves the system
// once dispatched.  Despachada is terminal.
const (
	FrotaPatio      = "patio"
	FrotaRampa      = "rampa"
	FrotaDespachada = "despachada"
)

// Frota is one physical carrier unit moving through the yard.
// Rampa/Galpao are set only while the vehicle is on a ramp; the
// Despacho pair records where it was loaded once dispatched, so the
// active fields can be cleared without losing history.
//
// Fields:
//  ID             – primary key identifier.
//  Numero         – display number, unique (e.g. "CEG-004").
//  Status         – one of the lifecycle constants above.
//  Rampa          – ramp number while on a ramp (nil otherwise).
//  Galpao         – bay number while on a ramp (nil otherwise).
//  Carregada      – loaded flag; only meaningful while on a ramp.
//  RampaDespacho  – ramp the vehicle was dispatched from.
//  GalpaoDespacho – bay the vehicle was dispatched from.
type Frota struct {
	ID             uint64    `json:"id"`
	Numero         string    `json:"numero"`
	Status         string    `json:"status"`
	Rampa          *int      `json:"rampa,omitempty"`
	Galpao         *int      `json:"galpao,omitempty"`
	Carregada      bool      `json:"carregada"`
	RampaDespacho  *int      `json:"rampa_despacho,omitempty"`
	GalpaoDespacho *int      `json:"galpao_despacho,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RampaBloqueada marks one (ramp, bay) pair as closed for new
// allocation.  Blocking never evicts a vehicle already on the ramp.
type RampaBloqueada struct {
	Rampa     int  `json:"rampa"`
	Galpao    int  `json:"galpao"`
	Bloqueada bool `json:"bloqueada"`
}
