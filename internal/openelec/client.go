package openelec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// Client talks to the OpenElectricity-style facility data API. One client is
// constructed per run and passed to the components that need it.
type Client struct {
	baseURL string
	apiKey  string
	times   domain.Timebase
	http    *http.Client
}

func New(baseURL, apiKey string, times domain.Timebase) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		times:   times,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Facilities fetches the unit records for operating coal facilities on the
// NEM. Records arrive flattened, one per unit, with nullable fields.
func (c *Client) Facilities(ctx context.Context) ([]domain.SourceRecord, error) {
	params := url.Values{}
	params.Set("network_id", "NEM")
	params.Set("status_id", "operating")
	params.Add("fueltech_id", "coal_black")
	params.Add("fueltech_id", "coal_brown")

	var out struct {
		Data []domain.SourceRecord `json:"data"`
	}
	if err := c.getJSON(ctx, "/facilities", params, &out); err != nil {
		return nil, fmt.Errorf("fetch facilities: %w", err)
	}
	return out.Data, nil
}

// PowerData fetches 5-minute power samples for the given facilities starting
// at dateStart (timezone-naive network time). Rows with a null power value
// or an unparseable interval are dropped here.
func (c *Client) PowerData(ctx context.Context, facilityCodes []string, dateStart string) ([]domain.PowerSample, error) {
	params := url.Values{}
	params.Set("network_id", "NEM")
	params.Set("metrics", "power")
	params.Set("interval", "5m")
	params.Set("date_start", dateStart)
	for _, code := range facilityCodes {
		params.Add("facility_code", code)
	}

	var out struct {
		Data []struct {
			UnitCode string   `json:"unit_code"`
			Power    *float64 `json:"power"`
			Interval string   `json:"interval"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/data/facilities", params, &out); err != nil {
		return nil, fmt.Errorf("fetch power data: %w", err)
	}

	samples := make([]domain.PowerSample, 0, len(out.Data))
	for _, row := range out.Data {
		if row.Power == nil {
			continue
		}
		interval, err := c.times.ParseUpstream(row.Interval)
		if err != nil {
			log.Debug().Str("unit", row.UnitCode).Str("interval", row.Interval).
				Msg("dropping power row with bad interval")
			continue
		}
		samples = append(samples, domain.PowerSample{
			UnitCode: row.UnitCode,
			Power:    *row.Power,
			Interval: interval,
		})
	}
	return samples, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
