// internal/app/ai/prompts.go

package ai

import (
	"strings"

	"github.com/nsu/musclub/internal/domain/models"
)

const promptTimeLayout = "02.01.2006 15:04"

const posterSystemPrompt = `Ты помощник организатора музыкальных мероприятий.
Пиши короткие, живые описания афиш на русском языке.
Стиль: дружелюбный, человеческий, 3-6 предложений.
Обязательно укажи дату, место и ключевые особенности события.
Не придумывай новых фактов, используй только переданные данные.
`

func posterUserPrompt(ev models.Event) string {
	var b strings.Builder
	b.WriteString("Нужно составить текст для афиши музыкального события.\n\n")
	b.WriteString("Название: " + ev.Title + "\n")
	if !ev.StartTime.IsZero() {
		b.WriteString("Начало: " + ev.StartTime.Format(promptTimeLayout) + "\n")
	}
	if ev.EndTime != nil {
		b.WriteString("Окончание: " + ev.EndTime.Format(promptTimeLayout) + "\n")
	}
	if strings.TrimSpace(ev.Venue) != "" {
		b.WriteString("Место проведения: " + ev.Venue + "\n")
	}
	if strings.TrimSpace(ev.Description) != "" {
		b.WriteString("Черновое описание от организаторов: " + ev.Description + "\n")
	}
	b.WriteString("\nТребования к тексту:\n")
	b.WriteString("- Напиши 3-6 предложений.\n")
	b.WriteString("- Стиль: живой, приглашающий, без канцелярита и токсичной рекламы.\n")
	b.WriteString("- Не используй эмодзи.\n")
	b.WriteString("- Текст должен быть на русском языке.\n")
	return b.String()
}

func socialSystemPrompt(platform, tone string) string {
	var b strings.Builder
	b.WriteString("You are a social media content creator for music events.\n")
	b.WriteString("Generate engaging, authentic social media posts in English.\n\n")

	switch strings.ToLower(platform) {
	case "twitter", "x":
		b.WriteString("Platform: Twitter/X\n")
		b.WriteString("- Maximum 280 characters (keep it concise)\n")
		b.WriteString("- Use hashtags strategically (2-3 relevant hashtags)\n")
		b.WriteString("- Include a call-to-action\n")
	case "instagram":
		b.WriteString("Platform: Instagram\n")
		b.WriteString("- Write engaging caption (150-300 words)\n")
		b.WriteString("- Use relevant hashtags (5-10 hashtags at the end)\n")
		b.WriteString("- Include emojis sparingly for visual appeal\n")
		b.WriteString("- Create excitement and FOMO\n")
	case "facebook":
		b.WriteString("Platform: Facebook\n")
		b.WriteString("- Write a friendly, informative post (100-200 words)\n")
		b.WriteString("- Include event details clearly\n")
		b.WriteString("- Encourage engagement (likes, shares, comments)\n")
	case "linkedin":
		b.WriteString("Platform: LinkedIn\n")
		b.WriteString("- Professional tone, but still engaging\n")
		b.WriteString("- Focus on networking and professional development aspects\n")
		b.WriteString("- 150-250 words\n")
	default:
		b.WriteString("Platform: General\n")
		b.WriteString("- Write an engaging post (100-200 words)\n")
		b.WriteString("- Include key event information\n")
	}

	b.WriteString("\nTone: " + tone + "\n")
	switch strings.ToLower(tone) {
	case "casual":
		b.WriteString("- Friendly, conversational style\n")
		b.WriteString("- Use contractions and everyday language\n")
	case "professional":
		b.WriteString("- Formal but approachable\n")
		b.WriteString("- Clear and structured\n")
	case "enthusiastic":
		b.WriteString("- Energetic and exciting\n")
		b.WriteString("- Use exclamation marks sparingly\n")
		b.WriteString("- Create urgency and excitement\n")
	case "informative":
		b.WriteString("- Clear and factual\n")
		b.WriteString("- Focus on key details\n")
	}

	b.WriteString("\nRequirements:\n")
	b.WriteString("- Only use information provided about the event\n")
	b.WriteString("- Do not invent facts or details\n")
	b.WriteString("- Make it engaging and shareable\n")
	b.WriteString("- Include date, time, and venue if available\n")
	return b.String()
}

func socialUserPrompt(ev models.Event) string {
	var b strings.Builder
	b.WriteString("Generate a social media post for the following music event:\n\n")
	b.WriteString("Title: " + ev.Title + "\n")
	if !ev.StartTime.IsZero() {
		b.WriteString("Start Time: " + ev.StartTime.Format(promptTimeLayout) + "\n")
	}
	if ev.EndTime != nil {
		b.WriteString("End Time: " + ev.EndTime.Format(promptTimeLayout) + "\n")
	}
	if strings.TrimSpace(ev.Venue) != "" {
		b.WriteString("Venue: " + ev.Venue + "\n")
	}
	if strings.TrimSpace(ev.Description) != "" {
		b.WriteString("Event Description: " + ev.Description + "\n")
	}
	if strings.TrimSpace(ev.AIDescription) != "" {
		b.WriteString("AI-Generated Poster Description: " + ev.AIDescription + "\n")
	}
	b.WriteString("\nGenerate the social media post now.")
	return b.String()
}
