package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// conversationFallback is returned when the follow-up question cannot be generated
const conversationFallback = "I'm having trouble processing that right now. Could you tell me more about your hair?"

// defaultProfileText stands in for an empty profile when searching products
const defaultProfileText = "Based on our conversation"

// ChatConfig holds configuration for the chat service
type ChatConfig struct {
	MaxQuestions      int // assistant questions before a recommendation is forced
	MaxMessages       int // history length before a recommendation is forced
	ProductSearchTopK int
	ReviewsEnabled    bool
	ReviewsPerProduct int
	EventSubject      string

	Recommendation domain.CompletionOptions
	Conversation   domain.CompletionOptions
	Extraction     domain.CompletionOptions
}

// ChatService drives the hair-profile conversation and produces recommendations
type ChatService struct {
	completer          domain.ChatCompleter
	embedder           domain.Embedder
	productSearcher    domain.VectorSearcher
	extractor          *MentionExtractor
	reviews            *ReviewMatcher
	publisher          domain.EventPublisher
	systemInstructions string
	cfg                ChatConfig
}

// ChatDeps groups the collaborators of the chat service. Embedder,
// ProductSearcher, Reviews and Publisher are optional.
type ChatDeps struct {
	Completer       domain.ChatCompleter
	Embedder        domain.Embedder
	ProductSearcher domain.VectorSearcher
	Catalog         *catalog.Catalog
	Extractor       *MentionExtractor
	Reviews         *ReviewMatcher
	Publisher       domain.EventPublisher
}

// NewChatService creates a new chat service with dependencies
func NewChatService(deps ChatDeps, config ChatConfig) *ChatService {
	if config.MaxQuestions <= 0 {
		config.MaxQuestions = 10
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = 20
	}
	if config.ProductSearchTopK <= 0 {
		config.ProductSearchTopK = 5
	}
	if config.ReviewsPerProduct <= 0 {
		config.ReviewsPerProduct = defaultMaxPerProduct
	}
	if config.EventSubject == "" {
		config.EventSubject = "hairstory.recommendations"
	}
	config.Recommendation = withCompletionDefaults(config.Recommendation, 800, 0.7)
	config.Conversation = withCompletionDefaults(config.Conversation, 300, 0.8)
	config.Extraction = withCompletionDefaults(config.Extraction, 500, 0.1)

	instructions := fallbackSystemInstructions
	if deps.Catalog != nil && deps.Catalog.Len() > 0 {
		instructions = BuildSystemInstructions(deps.Catalog.Summary())
	}

	return &ChatService{
		completer:          deps.Completer,
		embedder:           deps.Embedder,
		productSearcher:    deps.ProductSearcher,
		extractor:          deps.Extractor,
		reviews:            deps.Reviews,
		publisher:          deps.Publisher,
		systemInstructions: instructions,
		cfg:                config,
	}
}

// Chat handles one conversation turn.
// Flow: extract profile -> decide -> follow-up question or recommendation
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	for _, m := range req.ConversationHistory {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, m.Role)
		}
	}

	profile := MergeProfile(req.UserProfile, s.extractProfile(ctx, req.ConversationHistory))
	questions := countAssistantQuestions(req.ConversationHistory)
	lastUser := lastUserMessage(req.ConversationHistory)

	if !s.shouldRecommend(lastUser, questions, len(req.ConversationHistory)) {
		return &domain.ChatResponse{
			Type:    domain.ResponseTypeQuestion,
			Profile: profile,
			Message: s.converse(ctx, lastUser, req.ConversationHistory, profile, questions),
		}, nil
	}

	return s.recommend(ctx, req.ConversationHistory, profile)
}

// shouldRecommend reports whether this turn should produce a recommendation
func (s *ChatService) shouldRecommend(lastUser string, questions, messages int) bool {
	return containsAny(strings.ToLower(lastUser), recommendationRequestKeywords) ||
		questions >= s.cfg.MaxQuestions ||
		messages >= s.cfg.MaxMessages
}

func (s *ChatService) recommend(ctx context.Context, history []domain.Message, profile domain.HairProfile) (*domain.ChatResponse, error) {
	profileText := defaultProfileText
	if len(profile) > 0 {
		profileText = ProfileString(profile)
	}

	relevant := s.searchProducts(ctx, profileText)
	prompt := BuildRecommendationPrompt(profileText, relevant, history, profile)

	text, err := s.completer.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: s.systemInstructions},
		{Role: domain.RoleUser, Content: prompt},
	}, s.cfg.Recommendation)
	if err != nil {
		return nil, err
	}

	mentions := s.extractor.Extract(text)

	var reviews map[string][]domain.ReviewSnippet
	if s.cfg.ReviewsEnabled && s.reviews != nil && len(mentions) > 0 {
		names := make([]string, len(mentions))
		for i, m := range mentions {
			names[i] = m.Name
		}
		reviews = s.reviews.FetchReviews(ctx, names, s.cfg.ReviewsPerProduct)
		text = AppendReviewSection(text, mentions, reviews)
	}

	log.Info().
		Int("relevant", len(relevant)).
		Int("mentions", len(mentions)).
		Int("reviewed", len(reviews)).
		Msg("[CHAT] recommendation generated")

	s.publishRecommendation(ctx, mentions, reviews, len(history))

	return &domain.ChatResponse{
		Type:           domain.ResponseTypeRecommendation,
		Profile:        profile,
		Recommendation: text,
		Products:       mentions,
		Relevant:       relevant,
		Reviews:        reviews,
	}, nil
}

// converse asks the next follow-up question, falling back to a fixed prompt
func (s *ChatService) converse(ctx context.Context, lastUser string, history []domain.Message, profile domain.HairProfile, questions int) string {
	prompt := BuildConversationPrompt(lastUser, history, profile, questions, s.cfg.MaxQuestions)

	reply, err := s.completer.Complete(ctx, []domain.Message{{Role: domain.RoleUser, Content: prompt}}, s.cfg.Conversation)
	if err != nil {
		log.Error().Err(err).Msg("[CHAT] conversational response failed")
		return conversationFallback
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return conversationFallback
	}
	return reply
}

// extractProfile asks the model for profile fields mentioned so far
func (s *ChatService) extractProfile(ctx context.Context, history []domain.Message) domain.HairProfile {
	if len(history) == 0 {
		return nil
	}

	reply, err := s.completer.Complete(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: BuildProfileExtractionPrompt(history)},
	}, s.cfg.Extraction)
	if err != nil {
		log.Warn().Err(err).Msg("[CHAT] profile extraction failed")
		return nil
	}

	profile := ParseProfile(reply)
	if len(profile) == 0 {
		log.Debug().Msg("[CHAT] no profile fields in extraction reply")
	}
	return profile
}

// searchProducts finds catalog products semantically close to the profile.
// Failures leave the prompt without the relevant products section.
func (s *ChatService) searchProducts(ctx context.Context, profileText string) []domain.RelevantProduct {
	if s.embedder == nil || s.productSearcher == nil {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, profileText)
	if err != nil {
		log.Warn().Err(err).Msg("[CHAT] product search embedding failed")
		return nil
	}

	matches, err := s.productSearcher.Search(ctx, vector, s.cfg.ProductSearchTopK)
	if err != nil {
		log.Warn().Err(err).Msg("[CHAT] product search failed")
		return nil
	}

	products := make([]domain.RelevantProduct, 0, len(matches))
	for _, m := range matches {
		products = append(products, domain.RelevantProduct{
			Name:            metadataString(m.Metadata["name"]),
			Subtitle:        metadataString(m.Metadata["subtitle"]),
			URL:             metadataString(m.Metadata["url"]),
			Type:            metadataString(m.Metadata["type"]),
			Details:         metadataString(m.Metadata["details"]),
			Benefits:        metadataString(m.Metadata["benefits"]),
			HowToUse:        metadataString(m.Metadata["how_to_use"]),
			SimilarityScore: m.Score,
		})
	}
	return products
}

func (s *ChatService) publishRecommendation(ctx context.Context, mentions []domain.ProductMention, reviews map[string][]domain.ReviewSnippet, messages int) {
	if s.publisher == nil {
		return
	}

	event := domain.RecommendationEvent{
		ID:        uuid.NewString(),
		Products:  make([]string, len(mentions)),
		Messages:  messages,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for i, m := range mentions {
		event.Products[i] = m.Name
	}
	if len(reviews) > 0 {
		event.ReviewCounts = make(map[string]int, len(reviews))
		for name, snippets := range reviews {
			event.ReviewCounts[name] = len(snippets)
		}
	}

	if err := s.publisher.Publish(ctx, s.cfg.EventSubject, event); err != nil {
		log.Warn().Err(err).Str("subject", s.cfg.EventSubject).Msg("[CHAT] failed to publish recommendation event")
	}
}

func countAssistantQuestions(history []domain.Message) int {
	n := 0
	for _, m := range history {
		if m.Role == domain.RoleAssistant && strings.HasSuffix(strings.TrimSpace(m.Content), "?") {
			n++
		}
	}
	return n
}

func lastUserMessage(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

func withCompletionDefaults(opts domain.CompletionOptions, maxTokens int, temperature float32) domain.CompletionOptions {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = maxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = temperature
	}
	return opts
}
