package responder

import (
	"context"
	"strings"

	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// RulesConfig fills the placeholders of the canned replies.
type RulesConfig struct {
	CompanyName    string
	EmergencyPhone string
}

type rule struct {
	category Category
	keywords []string
	replies  []string
}

// Rules answers by keyword. The first category with a keyword contained in
// the lower-cased message wins; categories are tried in priority order so
// an emergency always beats a greeting.
type Rules struct {
	rules    []rule
	fallback []string
	rand     RandomSource
}

// NewRules builds the keyword responder. A nil rnd uses DefaultRandom.
func NewRules(cfg RulesConfig, rnd RandomSource) *Rules {
	if rnd == nil {
		rnd = DefaultRandom
	}
	fill := strings.NewReplacer("{company}", cfg.CompanyName, "{phone}", cfg.EmergencyPhone)
	expand := func(templates []string) []string {
		out := make([]string, len(templates))
		for i, t := range templates {
			out[i] = fill.Replace(t)
		}
		return out
	}

	return &Rules{
		rules: []rule{
			{
				category: CategoryEmergency,
				keywords: []string{"emergency", "urgent", "sparks", "burning smell"},
				replies: expand([]string{
					"This sounds like an emergency! Please call us immediately at {phone} for urgent electrical issues.",
					"For electrical emergencies, please call {phone} right away. Our emergency team is standing by 24/7.",
				}),
			},
			{
				category: CategoryGreeting,
				keywords: []string{"hello", "hi", "hey"},
				replies: expand([]string{
					"Hello! Welcome to {company}. How can I help you today?",
					"Hi there! I'm your electrical assistant. What electrical service do you need?",
					"Welcome! I'm here to help with all your electrical needs.",
				}),
			},
			{
				category: CategoryServices,
				keywords: []string{"service", "what do you do", "help with"},
				replies: []string{
					"We offer a full range of electrical services including wiring, panel upgrades, lighting installation, electrical repairs, and safety inspections. What specific service interests you?",
					"Our expert electricians handle residential and commercial electrical work. We specialize in panel upgrades, rewiring, lighting design, and electrical troubleshooting. How can we help?",
				},
			},
			{
				category: CategoryPricing,
				keywords: []string{"price", "cost", "how much"},
				replies: []string{
					"Our pricing is competitive and transparent. We offer free estimates for most projects. Would you like to schedule a consultation to discuss your specific needs?",
					"We provide upfront pricing with no hidden fees. Each project is unique, so I'd recommend a free estimate. Can I help you schedule one?",
				},
			},
			{
				category: CategoryAppointment,
				keywords: []string{"appointment", "schedule", "book"},
				replies: []string{
					"I'd be happy to help you schedule an appointment! Our electricians are available Monday through Saturday. What type of electrical work do you need done?",
					"Let's get you scheduled! We have openings this week. What electrical service do you need, and what's your preferred time?",
				},
			},
		},
		fallback: []string{
			"That's a great question! Our experienced electricians can definitely help with that. Would you like me to connect you with a specialist?",
			"I understand your concern. Our team has extensive experience with all types of electrical work. Can you tell me more about your specific situation?",
			"Thanks for reaching out! Our certified electricians are experts in handling these types of issues. Would you like to schedule a consultation?",
		},
		rand: rnd,
	}
}

func (r *Rules) Name() string { return "rules" }

// Classify returns the category text falls into.
func (r *Rules) Classify(text string) Category {
	category, _ := r.match(text)
	return category
}

// Respond picks a random reply from the category of the last visitor
// message.
func (r *Rules) Respond(_ context.Context, history []domain.Message) Reply {
	category, pool := r.match(lastUserText(history))
	text := pool[r.rand.IntN(len(pool))]
	return Reply{
		Text:     text,
		Category: category,
		Outcome:  OutcomeOK,
		Delay:    TypingDelay(text),
	}
}

func (r *Rules) match(text string) (Category, []string) {
	lower := strings.ToLower(text)
	for _, rl := range r.rules {
		for _, kw := range rl.keywords {
			if strings.Contains(lower, kw) {
				return rl.category, rl.replies
			}
		}
	}
	return CategoryDefault, r.fallback
}
