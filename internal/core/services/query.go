package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// NoGroundingAnswer is returned when retrieval finds nothing.
const NoGroundingAnswer = "I couldn't find any relevant information in the documents. " +
	"Please make sure documents have been uploaded."

const (
	answerMaxTokens  = 800
	answerTemp       = 0.3
	answerMaxSources = 10
)

// extractionTriggers route a chat question to structured extraction.
var extractionTriggers = []string{
	"door schedule", "generate a door schedule",
	"room summary", "list all rooms",
	"equipment list", "mep equipment",
}

// QueryService answers questions: cache lookup, hybrid retrieval,
// grounded generation and conversation bookkeeping.
type QueryService struct {
	retriever     *Retriever
	llm           driven.LLMService
	prompts       driven.PromptStore
	cache         driven.ResultCache
	conversations driven.ConversationStore
	extraction    driving.ExtractionService
	queryLog      driven.QueryLog

	historyTurns int
	llmTimeout   time.Duration
	now          func() time.Time
	newID        func() string
}

// QueryOption configures a QueryService.
type QueryOption func(*QueryService)

// WithExtraction enables chat-routed structured extraction.
func WithExtraction(extraction driving.ExtractionService) QueryOption {
	return func(s *QueryService) {
		s.extraction = extraction
	}
}

// WithQueryLog records every answered query.
func WithQueryLog(log driven.QueryLog) QueryOption {
	return func(s *QueryService) {
		s.queryLog = log
	}
}

// WithHistoryTurns sets how many prior turns are sent with a question.
func WithHistoryTurns(n int) QueryOption {
	return func(s *QueryService) {
		if n > 0 {
			s.historyTurns = n
		}
	}
}

// WithLLMTimeout bounds one generation call.
func WithLLMTimeout(d time.Duration) QueryOption {
	return func(s *QueryService) {
		if d > 0 {
			s.llmTimeout = d
		}
	}
}

// WithNow injects the clock used for query log timestamps.
func WithNow(now func() time.Time) QueryOption {
	return func(s *QueryService) {
		s.now = now
	}
}

// WithIDGenerator injects the conversation ID generator.
func WithIDGenerator(newID func() string) QueryOption {
	return func(s *QueryService) {
		s.newID = newID
	}
}

// NewQueryService creates a query service. llm may be nil; grounded
// questions then fail with domain.ErrGenerationUnavailable.
func NewQueryService(
	retriever *Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cache driven.ResultCache,
	conversations driven.ConversationStore,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		retriever:     retriever,
		llm:           llm,
		prompts:       prompts,
		cache:         cache,
		conversations: conversations,
		historyTurns:  domain.DefaultHistoryTurns,
		llmTimeout:    DefaultLLMTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query answers one question.
func (s *QueryService) Query(ctx context.Context, req driving.QueryRequest) (*driving.Answer, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.newID()
	}

	logger.Section("Query")
	logger.Debug("Query: %q conversation=%s", text, conversationID)

	if schema, ok := routeExtraction(text); ok && s.extraction != nil {
		return s.answerWithExtraction(ctx, text, schema, conversationID)
	}

	fingerprint := domain.Fingerprint(text, req.Filters)
	if entry := s.lookup(ctx, fingerprint); entry != nil {
		logger.Info("Cache hit %s", fingerprint)
		answer := &driving.Answer{
			Answer:         entry.Answer,
			Sources:        entry.Sources,
			Confidence:     entry.Confidence,
			StructuredData: entry.StructuredData,
			ConversationID: conversationID,
			Cached:         true,
		}
		s.remember(ctx, text, answer)
		return answer, nil
	}
	logger.Debug("Cache miss %s", fingerprint)

	matches, err := s.retriever.Retrieve(ctx, text, domain.SearchOptions{Filters: req.Filters})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(matches) == 0 {
		logger.Info("No grounding found")
		answer := &driving.Answer{
			Answer:         NoGroundingAnswer,
			Sources:        []domain.Source{},
			Confidence:     domain.ConfidenceNone,
			ConversationID: conversationID,
		}
		s.record(ctx, text, answer)
		return answer, nil
	}

	reply, err := s.generate(ctx, text, conversationID, matches)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answer := &driving.Answer{
		Answer:         reply,
		Sources:        domain.SourcesFrom(matches, answerMaxSources),
		Confidence:     s.confidence(matches),
		ConversationID: conversationID,
	}

	entry := &domain.CacheEntry{
		Fingerprint: fingerprint,
		Answer:      answer.Answer,
		Sources:     answer.Sources,
		Confidence:  answer.Confidence,
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		logger.Warn("Cache write failed: %v", err)
	}

	s.remember(ctx, text, answer)
	return answer, nil
}

// lookup returns a fresh cache entry or nil. Cache errors are treated
// as misses so a failing shared cache never blocks answers.
func (s *QueryService) lookup(ctx context.Context, fingerprint string) *domain.CacheEntry {
	entry, ok, err := s.cache.Get(ctx, fingerprint)
	if err != nil {
		logger.Warn("Cache read failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	return entry
}

func (s *QueryService) generate(
	ctx context.Context, text, conversationID string, matches []domain.Match,
) (string, error) {
	system, err := renderPrompt(s.prompts, driven.PromptAnswerSystem)
	if err != nil {
		return "", err
	}
	user, err := renderPrompt(s.prompts, driven.PromptAnswerUser, buildContext(matches), text)
	if err != nil {
		return "", err
	}

	history, err := s.conversations.Window(ctx, conversationID, s.historyTurns)
	if err != nil {
		return "", fmt.Errorf("load conversation: %w", err)
	}
	logger.Debug("History: %d turns", len(history))

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: string(domain.RoleSystem), Content: system})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: string(domain.RoleUser), Content: user})

	return chat(ctx, s.llm, s.llmTimeout, messages, driven.ChatOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemp,
	})
}

// confidence labels the best match relative to the highest fused score
// the current weights allow.
func (s *QueryService) confidence(matches []domain.Match) domain.Confidence {
	return groundingConfidence(s.retriever, matches)
}

// groundingConfidence labels matches by the top fused score relative to
// the best score r can produce.
func groundingConfidence(r *Retriever, matches []domain.Match) domain.Confidence {
	if len(matches) == 0 {
		return domain.ConfidenceNone
	}
	top := matches[0].FusedScore
	if ceiling := r.MaxScore(); ceiling > 0 {
		top /= ceiling
	}
	return domain.ConfidenceFor(top)
}

func (s *QueryService) answerWithExtraction(
	ctx context.Context, text string, schema domain.Schema, conversationID string,
) (*driving.Answer, error) {
	logger.Info("Routing to %s extraction", schema)
	result, err := s.extraction.Extract(ctx, schema.String())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	confidence := domain.ConfidenceHigh
	if result.Count == 0 {
		confidence = domain.ConfidenceNone
	}
	answer := &driving.Answer{
		Answer:         FormatExtraction(result),
		Sources:        result.Sources,
		Confidence:     confidence,
		StructuredData: result.Data,
		ConversationID: conversationID,
	}
	s.remember(ctx, text, answer)
	return answer, nil
}

// remember appends the exchange to the conversation and logs it.
func (s *QueryService) remember(ctx context.Context, text string, answer *driving.Answer) {
	for _, turn := range []domain.Turn{
		{Role: domain.RoleUser, Content: text},
		{Role: domain.RoleAssistant, Content: answer.Answer},
	} {
		if err := s.conversations.Append(ctx, answer.ConversationID, turn); err != nil {
			logger.Warn("Conversation append failed: %v", err)
			break
		}
	}
	s.record(ctx, text, answer)
}

func (s *QueryService) record(ctx context.Context, text string, answer *driving.Answer) {
	if s.queryLog == nil {
		return
	}
	seen := make(map[string]bool, len(answer.Sources))
	docs := make([]string, 0, len(answer.Sources))
	for _, src := range answer.Sources {
		if !seen[src.Filename] {
			seen[src.Filename] = true
			docs = append(docs, src.Filename)
		}
	}
	rec := domain.QueryRecord{
		Query:          text,
		ConversationID: answer.ConversationID,
		Documents:      docs,
		Cached:         answer.Cached,
		Timestamp:      s.now(),
	}
	if err := s.queryLog.Record(ctx, rec); err != nil {
		logger.Warn("Query log write failed: %v", err)
	}
}

// routeExtraction reports whether text asks for a structured listing
// and which schema answers it.
func routeExtraction(text string) (domain.Schema, bool) {
	lower := strings.ToLower(text)
	triggered := false
	for _, kw := range extractionTriggers {
		if strings.Contains(lower, kw) {
			triggered = true
			break
		}
	}
	if !triggered {
		return "", false
	}
	switch {
	case strings.Contains(lower, "door"):
		return domain.SchemaDoorSchedule, true
	case strings.Contains(lower, "room"):
		return domain.SchemaRoomSummary, true
	default:
		return domain.SchemaEquipmentList, true
	}
}

// FormatExtraction renders extraction records as a chat answer.
func FormatExtraction(result *domain.ExtractionResult) string {
	if result.Count == 0 {
		return fmt.Sprintf("No %s data found in the documents.",
			strings.ReplaceAll(result.Schema.String(), "_", " "))
	}

	var b strings.Builder
	switch records := result.Data.(type) {
	case []domain.DoorRecord:
		fmt.Fprintf(&b, "I found %d doors in the documents:\n\n", len(records))
		for _, d := range records {
			fmt.Fprintf(&b, "• %s: %smm × %smm, Fire Rating: %s, Material: %s\n",
				d.Mark.OrNA(), d.WidthMM, d.HeightMM, d.FireRating.OrNA(), d.Material.OrNA())
		}
	case []domain.RoomRecord:
		fmt.Fprintf(&b, "I found %d rooms in the documents:\n\n", len(records))
		for _, r := range records {
			fmt.Fprintf(&b, "• %s: Area: %sm², Finish: %s\n",
				r.Name.OrNA(), r.AreaSqm, r.FloorFinish.OrNA())
		}
	case []domain.EquipmentRecord:
		fmt.Fprintf(&b, "I found %d equipment items:\n\n", len(records))
		for _, e := range records {
			fmt.Fprintf(&b, "• %s: %s\n", e.Type.OrNA(), e.Description.OrNA())
		}
	}
	return b.String()
}
