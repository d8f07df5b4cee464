// Package queue defines message payloads exchanged over the message broker.
package queue

// CargaChangedEvent is published whenever a load record is created,
// edited or removed. It carries enough context for downstream
// consumers to build an audit trail without querying the primary
// database.
type CargaChangedEvent struct {
	EventID   string `json:"event_id"`
	CargaID   string `json:"carga_id"`
	Viagem    string `json:"viagem"`
	Tipo      string `json:"tipo"` // criacao, atualizacao or exclusao
	Campo     string `json:"campo,omitempty"`
	Valor     string `json:"valor,omitempty"`
	Usuario   string `json:"usuario"`
	OcorreuEm string `json:"ocorreu_em"`
}
