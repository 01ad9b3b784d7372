package usecase

import (
	"fmt"
	"strings"

	"github.com/hairstory/backend/internal/domain"
)

// Conversation windows used when building prompts
const (
	conversationContextMessages   = 4
	recommendationContextMessages = 5
	profileExtractionMessages     = 10
)

// BuildSystemInstructions returns the recommendation system prompt for a catalog summary
func BuildSystemInstructions(catalogSummary string) string {
	return `You are a warm, understanding haircare assistant for Hairstory. Help users find the haircare routine that fits their needs.

COMPLETE PRODUCT CATALOG SUMMARY:
` + catalogSummary + `

RECOMMENDATION GUIDELINES:
1. Every routine starts with a New Wash variant:
   - Fine or oily hair: New Wash Deep Clean
   - Dry or thick hair: New Wash Rich
   - Curly or coily hair: New Wash Original or New Wash Rich
   - Damaged hair: New Wash Original with Bond Boost for New Wash
   - Everyone else: New Wash Original
2. Then add 2-3 complementary products:
   - Fine or oily: Powder, Root Lift
   - Dry or thick: Hair Balm, Oil
   - Curly or coily: Hair Balm, Oil, Undressed
   - Damaged: Bond Serum
   - Heat styling: Primer
3. Routine order: Pre-Wash before New Wash; Primer and styling products after; Bond Boost mixed into New Wash; Color Boost for color-treated hair.
4. Suggest bundles for new users or complete routines, refills for regular users and trial kits for first-timers.

INSTRUCTIONS:
- Recommend a New Wash variant first, then the complementary products, and explain how they work together.
- Reference details the user shared and use their own words.
- Include product URLs.
- Only recommend products from the catalog above. Never invent products.
- If nothing fits, ask a clarifying question about hair type and concerns.`
}

// fallbackSystemInstructions is used when no catalog could be loaded
const fallbackSystemInstructions = "You are a haircare assistant. Please inform the user that there was an error loading the product catalog."

// BuildRecommendationPrompt assembles the user turn asking for a recommendation
func BuildRecommendationPrompt(profileText string, relevant []domain.RelevantProduct, history []domain.Message, profile domain.HairProfile) string {
	var b strings.Builder

	b.WriteString("Please provide a personalized recommendation based on the user's needs:\n\n")
	if len(profile) > 0 {
		fmt.Fprintf(&b, "USER'S HAIR PROFILE: %s\n\n", ProfileString(profile))
	}

	if userTurns := lastMessages(history, recommendationContextMessages); len(userTurns) > 0 {
		b.WriteString("CONVERSATION CONTEXT:\n")
		for _, m := range userTurns {
			if m.Role == domain.RoleUser {
				fmt.Fprintf(&b, "- User: %s\n", m.Content)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "USER'S INPUT: %s\n", profileText)

	if len(relevant) > 0 {
		b.WriteString("\nSEMANTICALLY RELEVANT PRODUCTS (ranked by similarity):\n")
		for i, p := range relevant {
			fmt.Fprintf(&b, "\n%d. %s\n   - Subtitle: %s\n   - Type: %s\n   - URL: %s\n   - Similarity Score: %.3f\n",
				i+1, p.Name, p.Subtitle, p.Type, p.URL, p.SimilarityScore)
			if p.Details != "" {
				fmt.Fprintf(&b, "   - Details: %s\n", p.Details)
			}
			if p.Benefits != "" {
				fmt.Fprintf(&b, "   - Benefits: %s\n", p.Benefits)
			}
			if p.HowToUse != "" {
				fmt.Fprintf(&b, "   - How to Use: %s\n", p.HowToUse)
			}
		}
	}

	b.WriteString(`
Recommend specific products that suit this user's hair type and concerns, explain why each one is a match,
include product URLs, and keep the tone warm, conversational and encouraging.`)

	return b.String()
}

// BuildConversationPrompt asks for the next conversational turn. The prompt
// depends on whether the user asked for products and how many of the
// question budget remain.
func BuildConversationPrompt(userInput string, history []domain.Message, profile domain.HairProfile, questionsAsked, maxQuestions int) string {
	var convo strings.Builder
	if recent := lastMessages(history, conversationContextMessages); len(recent) > 0 {
		convo.WriteString("Recent conversation:\n")
		for _, m := range recent {
			fmt.Fprintf(&convo, "%s: %s\n", speaker(m.Role), m.Content)
		}
	}
	if len(profile) > 0 {
		fmt.Fprintf(&convo, "\nWhat we know so far: %s\n", ProfileString(profile))
	}

	switch {
	case len(history) >= 3 && containsAny(strings.ToLower(userInput), recommendationRequestKeywords):
		return fmt.Sprintf(`You are a warm, understanding haircare assistant. The user is asking for product recommendations.

%s
User's latest message: %s

Acknowledge their hair concerns and goals, suggest 2-3 specific products that fit them, explain why,
and invite them to ask questions. Keep it conversational and encouraging:`, convo.String(), userInput)

	case questionsAsked >= maxQuestions:
		return fmt.Sprintf(`You are a warm, understanding haircare assistant. We've learned a lot about the user's hair.

%s
User's latest message: %s

Acknowledge what you've learned, offer to provide product recommendations and ask whether they'd like specific suggestions.
Keep it natural and encouraging:`, convo.String(), userInput)

	default:
		return fmt.Sprintf(`You are a warm, understanding haircare assistant building a hair profile through natural conversation.

%s
User's latest message: %s

Questions asked so far: %d/%d

Ask ONE natural follow-up question about a different aspect of their hair or routine.
Acknowledge what they already shared first. Keep it warm and natural:`, convo.String(), userInput, questionsAsked, maxQuestions)
	}
}

// BuildProfileExtractionPrompt asks for the hair profile as a JSON object
func BuildProfileExtractionPrompt(history []domain.Message) string {
	var conversation strings.Builder
	for _, m := range lastMessages(history, profileExtractionMessages) {
		fmt.Fprintf(&conversation, "%s: %s\n", speaker(m.Role), m.Content)
	}

	return `You are a hair profile extraction assistant. Analyze the following conversation and extract key information about the user's hair.

CONVERSATION:
` + conversation.String() + `
Return a JSON object using these fields, including only the ones the user clearly mentioned:
{
    "hair_type": "straight/wavy/curly/coily",
    "hair_texture": "fine/medium/thick",
    "hair_length": "short/medium/long",
    "scalp_condition": "dry/oily/normal/combination",
    "hair_concerns": ["list", "of", "concerns"],
    "hair_goals": ["list", "of", "goals"],
    "styling_preferences": "description",
    "wash_frequency": "how often they wash",
    "current_products": ["list", "of", "current", "products"],
    "chemical_treatments": "color/relaxer/perm/none",
    "lifestyle": "active/low-maintenance/etc",
    "climate": "dry/humid/cold/etc"
}

JSON:`
}

func speaker(role string) string {
	if role == domain.RoleUser {
		return "User"
	}
	return "Assistant"
}

func lastMessages(history []domain.Message, n int) []domain.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
