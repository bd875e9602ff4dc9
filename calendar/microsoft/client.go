package microsoft

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/guilherme-santos/agendahub"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// graphTimeFormat is how Graph renders start/end datetimes. A fractional
// second may follow; time.Parse accepts it without a layout entry.
const graphTimeFormat = "2006-01-02T15:04:05"

// Client fetches events from the signed-in user's calendar via Microsoft
// Graph. Each call is one authorized GET over a ±1-month window around
// now; no retry, no paging.
type Client struct {
	httpClient *http.Client
	now        func() time.Time

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
		now:        time.Now,
		BaseURL:    defaultBaseURL,
	}
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID          string        `json:"id"`
	Subject     string        `json:"subject"`
	BodyPreview string        `json:"bodyPreview"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
}

func (c *Client) Events(ctx context.Context, accessToken, agendaID string) ([]*agendahub.Appointment, error) {
	now := c.now()
	// Previous-month start through next-month end.
	windowStart := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	windowEnd := time.Date(now.Year(), now.Month()+2, 0, 23, 59, 59, 0, now.Location())

	q := url.Values{}
	q.Set("$top", "50")
	q.Set("$select", "id,subject,bodyPreview,start,end")
	q.Set("$orderby", "start/dateTime ASC")
	q.Set("startDateTime", windowStart.Format(time.RFC3339))
	q.Set("endDateTime", windowEnd.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/me/calendar/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("microsoft: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("microsoft: fetching events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp)
	}

	var result struct {
		Value []graphEvent `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("microsoft: decoding events: %w", err)
	}

	appts := make([]*agendahub.Appointment, 0, len(result.Value))
	for _, event := range result.Value {
		appt := newAppointment(event, agendaID)
		if appt.StartsAt.IsZero() || appt.EndsAt.IsZero() {
			c.logf("dropping event %s: unusable start/end", event.ID)
			continue
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// newAppointment maps one Graph event onto the canonical shape. Graph has
// no all-day date fallback; a missing timed field leaves the zero instant
// for the caller to reject.
func newAppointment(event graphEvent, agendaID string) *agendahub.Appointment {
	title := event.Subject
	if title == "" {
		title = "No Title"
	}
	return &agendahub.Appointment{
		ID:          event.ID,
		Title:       title,
		Description: event.BodyPreview,
		StartsAt:    eventTime(event.Start),
		EndsAt:      eventTime(event.End),
		AgendaID:    agendaID,
	}
}

func eventTime(dt graphDateTime) time.Time {
	if dt.DateTime == "" {
		return time.Time{}
	}
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(graphTimeFormat, dt.DateTime, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func providerError(resp *http.Response) *agendahub.ProviderError {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &body)

	return &agendahub.ProviderError{
		Source:     agendahub.SourceMicrosoft,
		StatusCode: resp.StatusCode,
		Message:    body.Error.Message,
	}
}

func (c *Client) logf(format string, a ...any) {
	if c.Verbose {
		agendahub.Logf(os.Stdout, "microsoft:", nil, format, a...)
	}
}
