// Package validate normalizes and validates single-field edits to a
// load record.  Every check is a pure predicate over one string value;
// ApplyFieldEdit combines them and derives the status side effect of a
// dock-slot assignment.
package validate

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cegyard/dock-scheduler/internal/model"
)

// Sentinel errors surfaced to handlers.  A rejected edit leaves the
// record untouched.
var (
	ErrInvalidBoxD   = errors.New("invalid boxd")
	ErrInvalidPrebox = errors.New("invalid prebox")
	ErrInvalidStatus = errors.New("invalid status")
)

// Canonical field names, matching the original spreadsheet columns.
const (
	FieldHora   = "HORA"
	FieldViagem = "VIAGEM"
	FieldFrota  = "FROTA"
	FieldPrebox = "PREBOX"
	FieldBoxD   = "BOX-D"
	FieldStatus = "STATUS"
)

// Warning is advisory feedback on an edit that was still accepted.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var alnum = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidBoxD accepts an empty value (clears the slot), any integer
// greater than zero with no upper bound, or a pure letters-and-digits
// identifier such as "G63".  Anything else is rejected.
func ValidBoxD(value string) bool {
	if value == "" {
		return true
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n > 0
	}
	return alnum.MatchString(trimmed)
}

// PreboxInRange reports whether n falls in one of the two staging
// ranges, [300,356] or [50,56].
func PreboxInRange(n int) bool {
	return (n >= 300 && n <= 356) || (n >= 50 && n <= 56)
}

// CheckPrebox validates a pre-box value.  Empty clears the field.  A
// non-numeric value is a hard rejection; a numeric value outside the
// staging ranges yields an advisory warning but is accepted.
func CheckPrebox(value string) (*Warning, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, ErrInvalidPrebox
	}
	if !PreboxInRange(n) {
		return &Warning{
			Field:   FieldPrebox,
			Message: "PREBOX recomendado: 300-356 ou 50-56",
		}, nil
	}
	return nil, nil
}

// NormalizeHora reformats a time value into zero-padded "HH:MM".
//
// Three input shapes are accepted: text already containing a colon is
// passed through unchanged; a fractional-day decimal (spreadsheet
// time serialization, e.g. 0.5) is converted by rounding to the
// nearest minute; free-typed digits are reformatted incrementally,
// inserting a colon after the second digit ("1234" -> "12:34").
func NormalizeHora(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || strings.Contains(value, ":") {
		return value
	}
	if strings.Contains(value, ".") {
		dec, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		totalMinutes := int(math.Round(dec * 24 * 60))
		hours := totalMinutes / 60
		minutes := totalMinutes % 60
		return pad2(hours) + ":" + pad2(minutes)
	}
	digits := keepDigits(value)
	if len(digits) <= 2 {
		return digits
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits[:2] + ":" + digits[2:]
}

func pad2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ApplyFieldEdit routes one field edit through its validator and
// returns the updated record.  On error the input record is returned
// unchanged.  Setting a non-empty BOX-D on a record whose status is
// not already COMPLETO or JA_FOI forces the status to PARCIAL;
// clearing the slot never reverts the status.  Unknown fields land in
// the record's Extra side map so imported columns survive round trips.
//
// Callers must re-run conflict detection after every BOX-D edit,
// accepted or not.
func ApplyFieldEdit(c model.Carga, field, raw string) (model.Carga, *Warning, error) {
	switch strings.ToUpper(strings.TrimSpace(field)) {
	case FieldBoxD:
		if !ValidBoxD(raw) {
			return c, nil, ErrInvalidBoxD
		}
		trimmed := strings.TrimSpace(raw)
		c.BoxD = trimmed
		if trimmed != "" && c.Status != model.StatusCompleto && c.Status != model.StatusJaFoi {
			c.Status = model.StatusParcial
		}
		return c, nil, nil
	case FieldPrebox:
		warn, err := CheckPrebox(raw)
		if err != nil {
			return c, nil, err
		}
		c.Prebox = strings.TrimSpace(raw)
		return c, warn, nil
	case FieldHora:
		c.Hora = NormalizeHora(raw)
		return c, nil, nil
	case FieldStatus:
		status := strings.ToUpper(strings.TrimSpace(raw))
		if !model.ValidCargaStatus(status) {
			return c, nil, ErrInvalidStatus
		}
		c.Status = status
		return c, nil, nil
	case FieldViagem:
		c.Viagem = strings.TrimSpace(raw)
		return c, nil, nil
	case FieldFrota:
		c.Frota = strings.TrimSpace(raw)
		return c, nil, nil
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[strings.TrimSpace(field)] = raw
		return c, nil, nil
	}
}
