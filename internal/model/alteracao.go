package model

import "time"

// Change-log entry kinds.  One entry is appended for every accepted
// mutation of the load collection.
const (
	AlteracaoCriacao     = "criacao"
	AlteracaoAtualizacao = "atualizacao"
	AlteracaoExclusao    = "exclusao"
)

// Alteracao is one audit entry of the change log.  Dados holds the
// mutated record serialized as JSON at the time of the change.
type Alteracao struct {
	ID        string    `json:"id"`
	Tipo      string    `json:"tipo"`
	Dados     string    `json:"dados"`
	Timestamp time.Time `json:"timestamp"`
}
