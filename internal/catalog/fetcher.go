package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/reservaestilo/booking-api/internal/domain/booking"
)

// Fetcher descarga el catálogo de servicios desde la planilla publicada
// como CSV. Columnas esperadas: servicio, duracion_min, precio, abono y
// opcionalmente descripcion. Encabezados en cualquier combinación de
// mayúsculas/espacios.
type Fetcher struct {
	url    string
	client *http.Client
}

func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]booking.ServiceOffering, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catálogo: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catálogo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catálogo: status %d", resp.StatusCode)
	}

	return ParseCSV(resp.Body)
}

// ParseCSV interpreta el CSV de la planilla. Filas incompletas o con
// números inválidos se descartan sin invalidar el resto del catálogo.
func ParseCSV(r io.Reader) ([]booking.ServiceOffering, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catálogo: csv inválido: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("catálogo: csv vacío")
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"servicio", "duracion_min", "precio", "abono"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catálogo: falta la columna %q", required)
		}
	}

	var services []booking.ServiceOffering
	for _, row := range records[1:] {
		name := strings.TrimSpace(field(row, col["servicio"]))
		if name == "" {
			continue
		}

		duration, err1 := strconv.Atoi(strings.TrimSpace(field(row, col["duracion_min"])))
		price, err2 := strconv.Atoi(strings.TrimSpace(field(row, col["precio"])))
		deposit, err3 := strconv.Atoi(strings.TrimSpace(field(row, col["abono"])))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if duration <= 0 || price < 0 || deposit < 0 || deposit > price {
			continue
		}

		desc := "Servicio profesional."
		if i, ok := col["descripcion"]; ok {
			if d := strings.TrimSpace(field(row, i)); d != "" {
				desc = d
			}
		}

		services = append(services, booking.ServiceOffering{
			ID:          Slug(name),
			Name:        name,
			Description: desc,
			DurationMin: duration,
			TotalPrice:  price,
			Deposit:     deposit,
			Balance:     price - deposit,
		})
	}

	return services, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Slug deriva un id estable a partir del nombre del servicio.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		default:
			// acentos y símbolos se omiten
		}
	}
	return strings.Trim(b.String(), "-")
}
