package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/google/uuid"
)

const ChatGreeting = "Hello! Please share a link to the job description you'd like to discuss, or upload your resume so I can assist you better."

const chatHistoryLimit = 10

const matchInsightPrompt = "Thanks for sharing! Here's a quick insight about the match between your resume and this job (max 50 words): %s %s"

const briefReplyPrompt = "Provide a brief response (max 50 words) to: %s"

const recruiterPrompt = `You are a senior recruitment professional. Keep your responses concise (3-4 sentences) and always end with 2-3 relevant follow-up questions.

Resume:
%s

Job Description:
%s

Previous conversation:
%s

Based on this context, provide professional advice tailored to their situation.

User: %s
Assistant:`

type ChatStore interface {
	Append(ctx context.Context, messages ...*model.ChatMessage) error
	Latest(ctx context.Context, userID uuid.UUID) (*model.ChatMessage, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]model.ChatMessage, error)
}

type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, resumeText string) (string, error)
}

// ChatUsecase answers chat turns with the job and résumé texts as standing
// context and appends both sides of every turn to the log.
type ChatUsecase struct {
	repo     ChatStore
	fetcher  service.JobFetcher
	gen      service.TextGenerator
	analyzer ResumeAnalyzer
	cfg      *config.GenerationConfig
	log      logging.Logger
}

func NewChatUsecase(repo ChatStore, fetcher service.JobFetcher, gen service.TextGenerator, analyzer ResumeAnalyzer, cfg *config.GenerationConfig, log logging.Logger) *ChatUsecase {
	return &ChatUsecase{
		repo:     repo,
		fetcher:  fetcher,
		gen:      gen,
		analyzer: analyzer,
		cfg:      cfg,
		log:      log.With("component", "chat"),
	}
}

// ProcessMessage answers one user message. A message that is a URL is fetched
// first and its text becomes the job context.
func (uc *ChatUsecase) ProcessMessage(ctx context.Context, sess *auth.Session, in dto.ChatMessageRequest) (*dto.ChatReplyDTO, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", common.ErrNotReady)
	}

	cv, job := nonEmpty(in.CvContent), nonEmpty(in.JobContent)
	if cv == nil || job == nil {
		uc.restoreContext(ctx, sess, &cv, &job)
	}

	isURL := looksLikeURL(message)
	if isURL {
		posting, err := uc.fetcher.FetchJobPosting(ctx, message)
		if err != nil {
			return nil, err
		}
		job = &posting.CleanedText
	}

	var prompt string
	switch {
	case isURL && cv != nil:
		prompt = fmt.Sprintf(matchInsightPrompt, uc.truncate(*cv), uc.truncate(*job))
	case cv != nil || job != nil:
		prompt = fmt.Sprintf(recruiterPrompt,
			uc.truncate(deref(cv)), uc.truncate(deref(job)),
			uc.truncate(uc.transcript(ctx, sess)), uc.truncate(message))
	default:
		prompt = uc.truncate(fmt.Sprintf(briefReplyPrompt, message))
	}

	raw, err := uc.gen.Generate(ctx, service.NewGenerationRequest(uc.cfg.ChatModel, prompt, uc.cfg.Chat))
	if err != nil {
		if errors.Is(err, common.ErrGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrGenerationFailed, err)
	}
	reply := util.CleanChatReply(raw)
	if reply == "" {
		return nil, fmt.Errorf("%w: empty chat reply", common.ErrGenerationFailed)
	}

	userID := sess.OptionalUserID()
	err = uc.repo.Append(ctx,
		&model.ChatMessage{Role: model.RoleUser, Message: message, CvContent: cv, JobContent: job, UserID: userID},
		&model.ChatMessage{Role: model.RoleAssistant, Message: reply, CvContent: cv, JobContent: job, UserID: userID},
	)
	if err != nil {
		return nil, persistErr("append chat messages", err)
	}

	return &dto.ChatReplyDTO{Reply: reply, CvContent: cv, JobContent: job}, nil
}

// History returns the latest messages of the user in chronological order, or
// just the greeting when there are none.
func (uc *ChatUsecase) History(ctx context.Context, sess *auth.Session, limit int) ([]model.ChatMessage, error) {
	greeting := []model.ChatMessage{{Role: model.RoleAssistant, Message: ChatGreeting}}
	if !sess.Authenticated() {
		return greeting, nil
	}
	if limit <= 0 {
		limit = 50
	}
	messages, err := uc.repo.History(ctx, sess.UserID, limit)
	if err != nil {
		return nil, persistErr("chat history", err)
	}
	if len(messages) == 0 {
		return greeting, nil
	}
	return messages, nil
}

// AnalyzeResume answers an uploaded résumé with a short strengths summary and
// keeps the résumé as chat context.
func (uc *ChatUsecase) AnalyzeResume(ctx context.Context, sess *auth.Session, resumeText string) (*dto.ChatReplyDTO, error) {
	reply, err := uc.analyzer.AnalyzeResume(ctx, resumeText)
	if err != nil {
		return nil, err
	}

	cv := &resumeText
	var job *string
	uc.restoreContext(ctx, sess, &cv, &job)

	err = uc.repo.Append(ctx, &model.ChatMessage{
		Role:       model.RoleAssistant,
		Message:    reply,
		CvContent:  cv,
		JobContent: job,
		UserID:     sess.OptionalUserID(),
	})
	if err != nil {
		return nil, persistErr("append chat message", err)
	}
	return &dto.ChatReplyDTO{Reply: reply, CvContent: cv, JobContent: job}, nil
}

// restoreContext fills missing contexts from the user's latest chat row.
func (uc *ChatUsecase) restoreContext(ctx context.Context, sess *auth.Session, cv, job **string) {
	if !sess.Authenticated() {
		return
	}
	latest, err := uc.repo.Latest(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			uc.log.Warn(ctx, "chat context not restored", "error", err)
		}
		return
	}
	if *cv == nil {
		*cv = nonEmpty(latest.CvContent)
	}
	if *job == nil {
		*job = nonEmpty(latest.JobContent)
	}
}

func (uc *ChatUsecase) transcript(ctx context.Context, sess *auth.Session) string {
	if !sess.Authenticated() {
		return ""
	}
	messages, err := uc.repo.History(ctx, sess.UserID, chatHistoryLimit)
	if err != nil {
		uc.log.Warn(ctx, "chat history unavailable", "error", err)
		return ""
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "Assistant"
		if m.Role == model.RoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+m.Message)
	}
	return strings.Join(lines, "\n")
}

func (uc *ChatUsecase) truncate(s string) string {
	return util.Truncate(s, uc.cfg.TruncateChars)
}

func looksLikeURL(message string) bool {
	if strings.ContainsAny(message, " \t\n") {
		return false
	}
	_, err := service.ParseJobURL(message)
	return err == nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
