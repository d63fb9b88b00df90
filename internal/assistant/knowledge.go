package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"fleet-curation-service/internal/models"
)

// SourceFAQ маркер источника из таблицы FAQ
const SourceFAQ = "FAQ"

// MaxSuggestions предельное количество подсказок
const MaxSuggestions = 3

const noMatchAnswer = "I couldn't find that in the fleet FAQ. Try one of the suggested questions."

// Knowledge отвечает на вопросы по FAQ и базе знаний
type Knowledge struct {
	provider Provider
	faq      []models.FAQEntry
	slices   []models.KnowledgeSlice
	timeout  time.Duration
	logger   *zap.Logger
}

// NewKnowledge создает сервис; provider может быть nil
func NewKnowledge(provider Provider, faq []models.FAQEntry, slices []models.KnowledgeSlice, timeout time.Duration, logger *zap.Logger) *Knowledge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Knowledge{provider: provider, faq: faq, slices: slices, timeout: timeout, logger: logger}
}

// ScoredEntry запись FAQ с релевантностью
type ScoredEntry struct {
	Entry models.FAQEntry
	Score int
}

// Answer отвечает на вопрос. Без провайдера или при его ошибке используется локальный поиск.
func (k *Knowledge) Answer(ctx context.Context, req models.KnowledgeRequest) (models.KnowledgeResponse, Mode) {
	query := strings.TrimSpace(req.Query)
	ranked := k.Search(query)
	local := k.localAnswer(query, ranked)
	if k.provider == nil {
		return local, ModeFallback
	}

	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	messages := append(append([]models.ChatMessage(nil), req.Messages...), models.ChatMessage{Role: "user", Content: query})
	answer, err := k.provider.Complete(ctx, k.systemPrompt(ranked), messages)
	if err != nil {
		k.logger.Warn("knowledge provider failed, using local FAQ search", zap.Error(err))
		return local, ModeFallback
	}
	return models.KnowledgeResponse{
		Answer:             answer,
		SuggestedQuestions: local.SuggestedQuestions,
		Sources:            local.Sources,
	}, ModeProvider
}

// Search ранжирует записи FAQ по совпадению токенов запроса.
// Совпадение с ключевым словом дает 3 балла, с токеном вопроса 1, с категорией 1.
func (k *Knowledge) Search(query string) []ScoredEntry {
	tokens := tokenize(query)
	out := make([]ScoredEntry, 0, len(k.faq))
	for _, e := range k.faq {
		score := 0
		question := tokenSet(e.Question)
		for _, t := range tokens {
			for _, kw := range e.Keywords {
				if strings.EqualFold(kw, t) {
					score += 3
					break
				}
			}
			if _, ok := question[t]; ok {
				score++
			}
			if strings.EqualFold(e.Category, t) {
				score++
			}
		}
		out = append(out, ScoredEntry{Entry: e, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (k *Knowledge) localAnswer(query string, ranked []ScoredEntry) models.KnowledgeResponse {
	resp := models.KnowledgeResponse{
		SuggestedQuestions: []string{},
		Sources:            []string{},
	}

	skip := ""
	if len(ranked) > 0 && ranked[0].Score > 0 {
		top := ranked[0].Entry
		skip = top.ID
		resp.Answer = top.Answer
		resp.Sources = append(resp.Sources, fmt.Sprintf("%s: %s", SourceFAQ, top.Question))
		for _, s := range k.matchingSlices(query) {
			resp.Sources = append(resp.Sources, "Knowledge: "+s.Title)
		}
	} else {
		resp.Answer = noMatchAnswer
		resp.Sources = append(resp.Sources, SourceFAQ)
	}

	for _, r := range ranked {
		if len(resp.SuggestedQuestions) == MaxSuggestions {
			break
		}
		if r.Entry.ID == skip {
			continue
		}
		resp.SuggestedQuestions = append(resp.SuggestedQuestions, r.Entry.Question)
	}
	return resp
}

// matchingSlices фрагменты базы знаний, у которых тег совпал с токеном запроса
func (k *Knowledge) matchingSlices(query string) []models.KnowledgeSlice {
	tokens := tokenSet(query)
	var out []models.KnowledgeSlice
	for _, s := range k.slices {
		for _, tag := range s.Tags {
			if _, ok := tokens[strings.ToLower(tag)]; ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (k *Knowledge) systemPrompt(ranked []ScoredEntry) string {
	var b strings.Builder
	b.WriteString("You are the fleet knowledge assistant. Prefer the FAQ entries below; say so when they do not cover the question.\n\n")
	for i, r := range ranked {
		if i == MaxSuggestions {
			break
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", r.Entry.Question, r.Entry.Answer)
	}
	for _, s := range k.slices {
		fmt.Fprintf(&b, "Note (%s): %s\n", s.Title, s.Summary)
	}
	return b.String()
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(s) {
		set[t] = struct{}{}
	}
	return set
}
