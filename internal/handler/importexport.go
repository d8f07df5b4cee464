package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/validate"
)

// exportColumns is the spreadsheet column order used on export.
var exportColumns = []string{"HORA", "VIAGEM", "FROTA", "PREBOX", "BOX-D", "status"}

type importRowError struct {
	Linha int    `json:"linha"`
	Campo string `json:"campo,omitempty"`
	Erro  string `json:"erro"`
}

type importResp struct {
	Criadas     int              `json:"criadas"`
	Atualizadas int              `json:"atualizadas"`
	Falhas      []importRowError `json:"falhas,omitempty"`
}

// Import accepts a JSON array of rows keyed by spreadsheet column
// names. Each row runs through the field validators; rows whose
// VIAGEM matches an existing record update it, the rest create new
// records. Failing rows are skipped and reported, the good ones still
// land.
func (h *CargaHandler) Import(c echo.Context) error {
	var rows []map[string]any
	if err := c.Bind(&rows); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected a JSON array of rows"})
	}

	ctx := c.Request().Context()
	resp := importResp{}

rowLoop:
	for i, row := range rows {
		viagem := strings.TrimSpace(stringCell(row, validate.FieldViagem))

		base := model.Carga{Status: model.StatusLivre}
		updating := false
		if viagem != "" {
			if existing, err := h.Cargas.GetByViagem(ctx, viagem); err == nil {
				base = existing
				updating = true
			}
		}

		for _, key := range sortedKeys(row) {
			if strings.EqualFold(key, "id") {
				continue
			}
			next, _, err := validate.ApplyFieldEdit(base, key, stringCell(row, key))
			if err != nil {
				resp.Falhas = append(resp.Falhas, importRowError{Linha: i + 1, Campo: key, Erro: err.Error()})
				continue rowLoop
			}
			base = next
		}

		if updating {
			if err := h.Cargas.Update(ctx, base.ID, base); err != nil {
				resp.Falhas = append(resp.Falhas, importRowError{Linha: i + 1, Erro: "update failed"})
				continue
			}
			h.recordChange(ctx, c, model.AlteracaoAtualizacao, base, "", "")
			resp.Atualizadas++
		} else {
			if err := h.Cargas.Create(ctx, &base); err != nil {
				resp.Falhas = append(resp.Falhas, importRowError{Linha: i + 1, Erro: "create failed"})
				continue
			}
			h.recordChange(ctx, c, model.AlteracaoCriacao, base, "", "")
			resp.Criadas++
		}
	}

	status := http.StatusOK
	if resp.Criadas == 0 && resp.Atualizadas == 0 && len(resp.Falhas) > 0 {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, resp)
}

// Export writes the collection as CSV in the original column order,
// extra imported columns appended after the fixed ones.
func (h *CargaHandler) Export(c echo.Context) error {
	cargas, err := h.Cargas.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cargas failed"})
	}

	extraCols := collectExtraColumns(cargas)
	header := append(append([]string{}, exportColumns...), extraCols...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode csv failed"})
	}
	for _, cg := range cargas {
		rec := []string{cg.Hora, cg.Viagem, cg.Frota, cg.Prebox, cg.BoxD, cg.Status}
		for _, col := range extraCols {
			rec = append(rec, cg.Extra[col])
		}
		if err := w.Write(rec); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode csv failed"})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode csv failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="cargas.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// stringCell renders a JSON cell value the way the spreadsheet would
// show it. Numbers drop a trailing ".0" so fleet and trip numbers do
// not round-trip as floats.
func stringCell(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok {
		// Column headers are matched case-insensitively.
		for k, vv := range row {
			if strings.EqualFold(k, key) {
				v = vv
				ok = true
				break
			}
		}
	}
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// Fixed columns first in canonical order, then the rest
	// alphabetically, so BOX-D edits run after the status column.
	rank := map[string]int{}
	for i, col := range []string{validate.FieldHora, validate.FieldViagem, validate.FieldFrota, validate.FieldPrebox, validate.FieldStatus, validate.FieldBoxD} {
		rank[col] = i
	}
	sort.SliceStable(keys, func(a, b int) bool {
		ra, oka := rank[strings.ToUpper(strings.TrimSpace(keys[a]))]
		rb, okb := rank[strings.ToUpper(strings.TrimSpace(keys[b]))]
		switch {
		case oka && okb:
			return ra < rb
		case oka:
			return true
		case okb:
			return false
		default:
			return keys[a] < keys[b]
		}
	})
	return keys
}

func collectExtraColumns(cargas []model.Carga) []string {
	seen := map[string]bool{}
	var cols []string
	for _, cg := range cargas {
		for k := range cg.Extra {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}
