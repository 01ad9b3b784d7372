package domain

// Chat roles used in conversation history
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HairProfile holds the hair attributes gathered during the conversation.
// Values are strings or string lists, as returned by profile extraction.
type HairProfile map[string]interface{}

// ChatRequest is an inbound chat turn with the full client-held history
type ChatRequest struct {
	ConversationHistory []Message   `json:"conversation_history"`
	UserProfile         HairProfile `json:"user_profile"`
}

// Response types returned by the chat flow
const (
	ResponseTypeQuestion       = "question"
	ResponseTypeRecommendation = "recommendation"
)

// ChatResponse is either a follow-up question or a recommendation
type ChatResponse struct {
	Type           string                     `json:"type"`
	Profile        HairProfile                `json:"profile"`
	Message        string                     `json:"message,omitempty"`
	Recommendation string                     `json:"recommendation,omitempty"`
	Products       []ProductMention           `json:"products,omitempty"`
	Relevant       []RelevantProduct          `json:"relevant_products,omitempty"`
	Reviews        map[string][]ReviewSnippet `json:"reviews,omitempty"`
}

// CompletionOptions tunes a single chat completion call
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// RecommendationEvent is published after a recommendation has been generated
type RecommendationEvent struct {
	ID           string         `json:"id"`
	Products     []string       `json:"products"`
	ReviewCounts map[string]int `json:"review_counts,omitempty"`
	Messages     int            `json:"messages"`
	Timestamp    string         `json:"timestamp"`
}
