package model

import "time"

// Scheduling entry states.
const (
	AgendamentoPendente   = "pendente"
	AgendamentoConfirmado = "confirmado"
	AgendamentoCancelado  = "cancelado"
)

// Agendamento is a free-form scheduling entry created by an operator,
// independent of the load table (e.g. a maintenance window or a
// carrier appointment).  Data is an ISO date or date-time string.
type Agendamento struct {
	ID        uint64    `json:"id"`
	Titulo    string    `json:"titulo"`
	Descricao *string   `json:"descricao,omitempty"`
	Data      string    `json:"data"`
	UsuarioID uint64    `json:"usuario_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidAgendamentoStatus reports whether s is a known entry state.
func ValidAgendamentoStatus(s string) bool {
	switch s {
	case AgendamentoPendente, AgendamentoConfirmado, AgendamentoCancelado:
		return true
	}
	return false
}
