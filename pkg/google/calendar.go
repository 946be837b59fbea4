package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	coursedomain "studysync-backend/internal/course/domain"
)

// ListUpcomingEvents fetches upcoming events for a course calendar,
// expanded to single events in start-time order.
func (s *Service) ListUpcomingEvents(ctx context.Context, creds Credentials, calendarID string) ([]coursedomain.CalendarEvent, error) {
	srv, err := s.Calendar(ctx, creds.AccessToken, creds.RefreshToken, creds.Expiry, creds.OnRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.WaitCalendar(ctx); err != nil {
		return nil, err
	}
	resp, err := srv.Events.List(calendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(100).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list events for calendar %s: %w", calendarID, err)
	}

	events := make([]coursedomain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		event := coursedomain.CalendarEvent{
			EventID:     item.Id,
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			StartTime:   parseEventTime(item.Start),
			EndTime:     parseEventTime(item.End),
			Link:        item.HtmlLink,
		}
		if item.Creator != nil {
			event.CreatorEmail = item.Creator.Email
			event.CreatorName = item.Creator.DisplayName
		}
		for _, a := range item.Attendees {
			event.Attendees = append(event.Attendees, coursedomain.Attendee{
				Email:          a.Email,
				DisplayName:    a.DisplayName,
				ResponseStatus: a.ResponseStatus,
			})
		}
		events = append(events, event)
	}
	return events, nil
}

// parseEventTime handles both timed and all-day events.
func parseEventTime(edt *calendar.EventDateTime) *time.Time {
	if edt == nil {
		return nil
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return &t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return &t
		}
	}
	return nil
}
