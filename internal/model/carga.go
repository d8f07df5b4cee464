package model

// Status values a load record ("carga") can assume.  LIVRE is the
// default for newly created records.  JA_FOI marks a departed trip:
// its BOX-D no longer counts as occupied and it never participates
// in conflicts.
const (
	StatusLivre    = "LIVRE"
	StatusParcial  = "PARCIAL"
	StatusCompleto = "COMPLETO"
	StatusJaFoi    = "JA_FOI"
)

// Carga is one scheduled trip to be unloaded at a dock slot.
//
// Fields:
//  ID     – opaque stable identifier (UUID).
//  Hora   – scheduled time as zero-padded "HH:MM" text.
//  Viagem – trip number.
//  Frota  – fleet/vehicle number.
//  Prebox – staging-area number as text; expected numeric in
//           [300,356] or [50,56] but out-of-range values are kept.
//  BoxD   – dock slot identifier; empty means unassigned.
//  Status – one of the four status constants above.
//  Extra  – unrecognized columns carried along from imports; nil
//           for records created in the app.
type Carga struct {
	ID     string            `json:"id"`
	Hora   string            `json:"HORA"`
	Viagem string            `json:"VIAGEM"`
	Frota  string            `json:"FROTA"`
	Prebox string            `json:"PREBOX"`
	BoxD   string            `json:"BOX-D"`
	Status string            `json:"status"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// ValidCargaStatus reports whether s is one of the four load statuses.
func ValidCargaStatus(s string) bool {
	switch s {
	case StatusLivre, StatusParcial, StatusCompleto, StatusJaFoi:
		return true
	}
	return false
}
