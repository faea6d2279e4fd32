// Package catalog implementa el cliente del catálogo externo de la tienda.
// El core solo lo invoca para empujar el stock de la bodega primaria; nunca
// lo consulta.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/shopspring/decimal"
)

var _ inventory.CatalogService = (*Client)(nil)

// Client cliente HTTP del catálogo.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient construye el cliente. Devuelve nil si no hay BaseURL configurada
// (la tienda no tiene catálogo que sincronizar).
func NewClient(cfg config.CatalogConfig) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type setStockPayload struct {
	VariationID *int64          `json:"variation_id,omitempty"`
	Qty         decimal.Decimal `json:"qty"`
	ManageStock bool            `json:"manage_stock"`
	InStock     bool            `json:"in_stock"`
}

// SetManagedStock fija el stock gestionado de un producto del catálogo.
func (c *Client) SetManagedStock(ctx context.Context, productID int64, variationID *int64, qty decimal.Decimal, inStock bool) error {
	body, err := json.Marshal(setStockPayload{
		VariationID: variationID,
		Qty:         qty,
		ManageStock: true,
		InStock:     inStock,
	})
	if err != nil {
		return fmt.Errorf("marshal stock payload: %w", err)
	}

	url := fmt.Sprintf("%s/products/%d/stock", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request catálogo: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("llamar catálogo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catálogo respondió %d: %s", resp.StatusCode, msg)
	}
	return nil
}
