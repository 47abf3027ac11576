package mercadopago

import (
	"context"
	"fmt"
	"strings"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/reservaestilo/booking-api/internal/domain/booking"
)

const currency = "CLP"

// Gateway implementa booking.PaymentGateway sobre el SDK de Mercado Pago:
// creación de preferencias de pago y búsqueda de pagos por referencia.
type Gateway struct {
	preferences preference.Client
	payments    payment.Client
	returnURL   string
}

func New(accessToken, returnURL string) (*Gateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: %w", err)
	}

	return &Gateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		returnURL:   returnURL,
	}, nil
}

func (g *Gateway) CreatePreference(ctx context.Context, in booking.PreferenceInput) (booking.PreferenceRef, error) {
	// El proveedor rechaza pagadores sin email; usamos un placeholder
	// cuando el dato del cliente no parece una dirección.
	email := in.PayerEmail
	if !strings.Contains(email, "@") {
		email = "cliente@test.com"
	}

	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:      in.Title,
				Quantity:   1,
				UnitPrice:  float64(in.Amount),
				CurrencyID: currency,
			},
		},
		Payer: &preference.PayerRequest{
			Email: email,
		},
		ExternalReference: in.ExternalReference,
		BackURLs: &preference.BackURLsRequest{
			Success: g.returnURL,
			Failure: g.returnURL,
			Pending: g.returnURL,
		},
		AutoReturn: "approved",
	}

	resp, err := g.preferences.Create(ctx, req)
	if err != nil {
		return booking.PreferenceRef{}, fmt.Errorf("mercadopago: creando preferencia: %w", err)
	}

	return booking.PreferenceRef{
		RedirectURL: resp.InitPoint,
		GatewayID:   resp.ID,
	}, nil
}

// QueryApproved busca pagos aprobados que coincidan exactamente con la
// referencia. Gana el primero; el total de coincidencias se reporta para
// que el caller detecte duplicados.
func (g *Gateway) QueryApproved(ctx context.Context, externalReference string) (booking.ApprovalResult, error) {
	resp, err := g.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{
			"external_reference": externalReference,
			"sort":               "date_created",
			"criteria":           "desc",
		},
	})
	if err != nil {
		return booking.ApprovalResult{}, fmt.Errorf("mercadopago: buscando pagos: %w", err)
	}

	result := booking.ApprovalResult{}
	for _, p := range resp.Results {
		if p.Status != "approved" || p.ExternalReference != externalReference {
			continue
		}
		result.Matches++
		if !result.Approved {
			result.Approved = true
			result.PaymentID = fmt.Sprintf("%d", p.ID)
		}
	}

	return result, nil
}
