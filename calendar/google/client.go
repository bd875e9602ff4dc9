package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/agendahub"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// maxResults limits each fetch to a single page of events.
const maxResults = "50"

// Client fetches events from the signed-in user's primary Google
// calendar. Every call is a single authorized GET; the caller re-invokes
// when it wants fresher data.
type Client struct {
	httpClient *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
	Verbose bool
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		BaseURL:    defaultBaseURL,
	}
}

func (c *Client) Events(ctx context.Context, accessToken, agendaID string) ([]*agendahub.Appointment, error) {
	q := url.Values{}
	q.Set("maxResults", maxResults)
	q.Set("orderBy", "startTime")
	q.Set("singleEvents", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/calendars/primary/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: fetching events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp)
	}

	var events calendar.Events
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("google: decoding events: %w", err)
	}

	appts := make([]*agendahub.Appointment, 0, len(events.Items))
	for _, item := range events.Items {
		appt := newAppointment(item, agendaID)
		if appt.StartsAt.IsZero() || appt.EndsAt.IsZero() {
			c.logf("dropping event %s: unusable start/end", item.Id)
			continue
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// providerError extracts the provider's own error message when the body
// carries one, falling back to the HTTP status text.
func providerError(resp *http.Response) *agendahub.ProviderError {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &body)

	return &agendahub.ProviderError{
		Source:     agendahub.SourceGoogle,
		StatusCode: resp.StatusCode,
		Message:    body.Error.Message,
	}
}

func (c *Client) logf(format string, a ...any) {
	if c.Verbose {
		agendahub.Logf(os.Stdout, "google:", nil, format, a...)
	}
}
