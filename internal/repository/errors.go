// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as handlers to distinguish between failure scenarios without
// inspecting driver errors: not-found values become HTTP 404,
// uniqueness violations become 409.
package repository

import "errors"

// ErrCargaNotFound is returned when a load record id does not exist.
var ErrCargaNotFound = errors.New("carga nao encontrada")

// ErrFrotaNotFound is returned when a fleet vehicle id does not exist.
var ErrFrotaNotFound = errors.New("frota nao encontrada")

// ErrFrotaExists is returned when creating a vehicle whose display
// number is already registered.
var ErrFrotaExists = errors.New("frota ja existe")

// ErrAgendamentoNotFound is returned when a scheduling entry id does
// not exist.
var ErrAgendamentoNotFound = errors.New("agendamento nao encontrado")

// ErrUsernameExists is returned when registering a duplicate username.
var ErrUsernameExists = errors.New("username already exists")
