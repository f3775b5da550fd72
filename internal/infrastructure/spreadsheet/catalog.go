// Package spreadsheet lee catálogos de productos desde CSV o Excel para la carga inicial.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CatalogRow fila del catálogo: codigo, nombre, precio_venta, precio_compra, stock, stock_minimo.
type CatalogRow struct {
	Code         string
	Name         string
	PrecioVenta  decimal.Decimal
	PrecioCompra decimal.Decimal
	Stock        decimal.Decimal
	StockMinimo  decimal.Decimal
}

// ReadCatalogCSV lee un CSV separado por ';'. Las hojas exportadas desde Excel en
// Windows suelen venir en ISO-8859-1: latin1 las decodifica.
func ReadCatalogCSV(r io.Reader, latin1 bool) ([]CatalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

// ReadCatalogXLSX lee la primera hoja del libro.
func ReadCatalogXLSX(r io.Reader) ([]CatalogRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir libro: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el libro no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return parseRecords(rows)
}

// parseRecords la primera fila es encabezado si su tercera columna no es numérica.
// Las filas vacías se ignoran.
func parseRecords(records [][]string) ([]CatalogRow, error) {
	var out []CatalogRow
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("fila %d: se esperaban al menos codigo, nombre y precio_venta", i+1)
		}
		if i == 0 {
			if _, err := parseAmount(rec[2]); err != nil {
				continue
			}
		}
		row := CatalogRow{Code: strings.TrimSpace(rec[0]), Name: strings.TrimSpace(rec[1])}
		targets := []*decimal.Decimal{&row.PrecioVenta, &row.PrecioCompra, &row.Stock, &row.StockMinimo}
		for j, dst := range targets {
			if 2+j >= len(rec) {
				break
			}
			v, err := parseAmount(rec[2+j])
			if err != nil {
				return nil, fmt.Errorf("fila %d columna %d: %w", i+1, 3+j, err)
			}
			*dst = v
		}
		out = append(out, row)
	}
	return out, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseAmount acepta punto decimal ("1250.50") o coma decimal con punto de miles ("1.250,50").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	}
	return decimal.NewFromString(s)
}
