package klaviyo

import (
	"time"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
)

// Wire shapes for POST /events (JSON:API).
type (
	eventPayload struct {
		Data eventData `json:"data"`
	}

	eventData struct {
		Type          string             `json:"type"`
		Attributes    eventAttributes    `json:"attributes"`
		Relationships eventRelationships `json:"relationships"`
	}

	eventAttributes struct {
		Metric     metricRef      `json:"metric"`
		Properties map[string]any `json:"properties"`
		Time       string         `json:"time,omitempty"`
		Value      *float64       `json:"value,omitempty"`
	}

	metricRef struct {
		Name string `json:"name"`
	}

	eventRelationships struct {
		Profile profileRel `json:"profile"`
	}

	profileRel struct {
		Data profileRef `json:"data"`
	}

	profileRef struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
)

func buildPayload(event *entity.Event, denyList map[string]struct{}) eventPayload {
	attrs := eventAttributes{
		Metric:     metricRef{Name: event.MetricName},
		Properties: sanitizeProperties(event.Properties, denyList),
		Value:      event.Value,
	}

	if event.Time != nil {
		attrs.Time = event.Time.UTC().Format(time.RFC3339)
	}

	return eventPayload{
		Data: eventData{
			Type:       "event",
			Attributes: attrs,
			Relationships: eventRelationships{
				Profile: profileRel{
					Data: profileRef{Type: "profile", ID: event.ProfileID},
				},
			},
		},
	}
}
