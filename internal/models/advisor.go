package models

import "time"

// AdvisorRequest is the inbound chat request.
type AdvisorRequest struct {
	Query     string `json:"query" validate:"required,min=1"`
	SessionID string `json:"session_id,omitempty"`
}

// StructuredQuery is the derived interpretation of a free-text query.
// The labels are short free-form strings, not enums.
type StructuredQuery struct {
	Ticker    string `json:"ticker"`
	QueryType string `json:"query_type"`
	TimeFrame string `json:"time_frame"`
	Intent    string `json:"intent"`
}

// AdvisorResponse bundles everything produced for one conversational turn.
type AdvisorResponse struct {
	Response             string                `json:"response"`
	StructuredQuery      StructuredQuery       `json:"structured_query"`
	UserLevel            string                `json:"user_level"`
	StockData            *Quote                `json:"stock_data,omitempty"`
	ComprehensiveContext *ComprehensiveContext `json:"comprehensive_context,omitempty"`
	OriginalQuery        string                `json:"original_query"`
	SessionID            string                `json:"session_id"`
}

// ConversationEntry records one query/response pair in a session.
// Ticker is empty when the query resolved to no symbol.
type ConversationEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Ticker    string    `json:"ticker"`
}
