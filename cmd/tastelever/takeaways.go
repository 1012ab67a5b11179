package main

// Takeaway is one highlight extracted from an earnings call.
type Takeaway struct {
	Type            string  `json:"type" validate:"oneof=end_market_commentary geo_commentary guidance kpi_commentary other product_commentary qa_session_highlights segment_commentary" jsonschema:"enum=end_market_commentary,enum=geo_commentary,enum=guidance,enum=kpi_commentary,enum=other,enum=product_commentary,enum=qa_session_highlights,enum=segment_commentary"`
	Takeaway        string  `json:"takeaway"`
	QuotedText      string  `json:"quotedText"`
	PriorContext    *string `json:"priorContext"`
	CalendarEventID string  `json:"calendarEventId"`
	ImportanceScore float64 `json:"importanceScore" validate:"min=1,max=3" jsonschema:"minimum=1,maximum=3"`
}

// Materiality is the label the prompt is compiled to predict.
type Materiality struct {
	MaterialityRating float64 `json:"materialityRating" validate:"min=1,max=3" jsonschema:"minimum=1,maximum=3"`
}

func materialityScore(m Materiality) float64 {
	return m.MaterialityRating
}
