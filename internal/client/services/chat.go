package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/logging"
	"github.com/google/uuid"
)

const (
	// A reply that is a short question means the model is still collecting
	// information.
	learningReplyLimit = 250

	noSummaryReply = "No health summary is stored yet. Add a follow-up log or run summary to create one."
	imageOnlyText  = "Clinical visual input."
)

// Session is one chat transcript.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewSession starts a transcript with the greeting of the safety officer.
func NewSession(profile models.UserProfile, now time.Time) *Session {
	greeting := fmt.Sprintf("Greetings %s. MediGenie is online and has your health baseline loaded. How can I help?", profile.Name)
	return &Session{
		ID: uuid.NewString(),
		messages: []models.ChatMessage{{
			Role:        models.RoleModel,
			Text:        greeting,
			Timestamp:   now,
			ActiveAgent: models.AgentSafetyOfficer,
		}},
	}
}

func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(m ...models.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, m...)
	s.mu.Unlock()
}

func (s *Session) history() []inference.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inference.Message, 0, len(s.messages))
	for _, m := range s.messages {
		role := inference.RoleUser
		if m.Role == models.RoleModel {
			role = inference.RoleModel
		}
		out = append(out, inference.Message{Role: role, Parts: []inference.Part{{Text: m.Text}}})
	}
	return out
}

// Orchestrator classifies chat turns and dispatches them.
type Orchestrator struct {
	profiles   *ProfileService
	gen        inference.Generator
	simulator  *Simulator
	classifier Classifier
	guard      *Guard
	log        logging.Logger
	now        func() time.Time
}

func NewOrchestrator(profiles *ProfileService, gen inference.Generator, simulator *Simulator, classifier Classifier, guard *Guard, log logging.Logger) *Orchestrator {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Orchestrator{
		profiles:   profiles,
		gen:        gen,
		simulator:  simulator,
		classifier: classifier,
		guard:      guard,
		log:        log,
		now:        time.Now,
	}
}

// Chat answers one user turn. Both the user message and the reply are
// appended to the session on success.
func (o *Orchestrator) Chat(ctx context.Context, s *Session, text string, image *models.Image) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return models.ChatMessage{}, common.Invalid("message", "is required")
	}

	profile, err := o.profiles.Registered(ctx)
	if err != nil {
		return models.ChatMessage{}, err
	}

	release, err := o.guard.Acquire(ActionChat)
	if err != nil {
		return models.ChatMessage{}, err
	}
	defer release()

	intent := o.classifier.Classify(text, image != nil)
	log := o.log.With("session", s.ID, "intent", intent)
	log.Debug(ctx, "chat turn classified")

	user := models.ChatMessage{Role: models.RoleUser, Text: text, Image: image, Timestamp: o.now()}
	if user.Text == "" {
		user.Text = imageOnlyText
	}

	var reply models.ChatMessage
	switch intent {
	case IntentCounterfactual:
		reply, err = o.simulate(ctx, profile, text)
	case IntentMemory:
		reply = o.memory(profile)
	default:
		reply, err = o.converse(ctx, s, profile, user, intent)
	}
	if err != nil {
		log.Warn(ctx, "chat turn failed", "error", err)
		return models.ChatMessage{}, err
	}

	reply.Role = models.RoleModel
	reply.Timestamp = o.now()
	s.append(user, reply)
	return reply, nil
}

func (o *Orchestrator) simulate(ctx context.Context, profile models.UserProfile, scenario string) (models.ChatMessage, error) {
	if profile.DigitalTwin == nil {
		return models.ChatMessage{}, fmt.Errorf("%w; run rebuild first", common.ErrNoTwin)
	}
	res, err := o.simulator.Simulate(ctx, profile.DigitalTwin, profile, scenario)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return models.ChatMessage{
		Text:        res.Narrative,
		ActiveAgent: models.AgentCounterfactual,
		Confidence:  confidence(res.Narrative),
	}, nil
}

func (o *Orchestrator) memory(profile models.UserProfile) models.ChatMessage {
	if strings.TrimSpace(profile.HealthSummary) == "" {
		return models.ChatMessage{Text: noSummaryReply, ActiveAgent: models.AgentMemory, Confidence: models.ConfidenceLow}
	}
	return models.ChatMessage{Text: profile.HealthSummary, ActiveAgent: models.AgentMemory, Confidence: models.ConfidenceHigh}
}

func (o *Orchestrator) converse(ctx context.Context, s *Session, profile models.UserProfile, user models.ChatMessage, intent Intent) (models.ChatMessage, error) {
	agent := intent.Agent()

	var attachment *inference.InlineData
	if user.Image != nil {
		attachment = &inference.InlineData{MimeType: user.Image.MimeType, Data: user.Image.Data}
	}
	messages := append(s.history(), inference.UserParts(user.Text, attachment))

	resp, err := o.gen.Generate(ctx, inference.Request{
		SystemInstruction: chatInstruction(language(profile), agent),
		Messages:          messages,
		Tools:             inference.Tools{WebSearch: true},
	})
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("chat: %w", err)
	}

	reply := models.ChatMessage{
		Text:        resp.Text,
		ActiveAgent: agent,
		Confidence:  confidence(resp.Text),
		Sources:     resp.GroundingReferences,
	}

	if intent == IntentPrescriptionSafety {
		advice, err := prescribe(ctx, o.gen, profile, user.Text)
		if err != nil {
			o.log.Warn(ctx, "recommendation dropped", "error", err)
		} else {
			reply.Recommendation = &advice
		}
	}
	return reply, nil
}

func confidence(reply string) models.Confidence {
	if strings.Contains(reply, "?") && utf8.RuneCountInString(reply) < learningReplyLimit {
		return models.ConfidenceLow
	}
	return models.ConfidenceHigh
}

func prescribe(ctx context.Context, gen inference.Generator, profile models.UserProfile, query string) (models.PrescriptionAdvice, error) {
	allergies := "none reported"
	if len(profile.Allergies) > 0 {
		allergies = strings.Join(profile.Allergies, ", ")
	}
	prompt := "Treatment and price for: " + query + ". User Allergies: " + allergies

	resp, err := gen.Generate(ctx, inference.Request{
		SystemInstruction: prescriptionInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
		ResponseSchema:    models.PrescriptionAdviceSchema(),
		Tools:             inference.Tools{WebSearch: true},
	})
	if err != nil {
		return models.PrescriptionAdvice{}, fmt.Errorf("prescription advice: %w", err)
	}
	return models.ParsePrescriptionAdvice([]byte(resp.Text))
}
