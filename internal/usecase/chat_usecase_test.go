package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fadilmartias/cover-letter-generator/internal/auth"
	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/dto"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatStore struct {
	mu        sync.Mutex
	messages  []model.ChatMessage
	appendErr error
}

func (f *fakeChatStore) Append(_ context.Context, messages ...*model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, m := range messages {
		f.messages = append(f.messages, *m)
	}
	return nil
}

func (f *fakeChatStore) Latest(_ context.Context, userID uuid.UUID) (*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if m := f.messages[i]; m.UserID != nil && *m.UserID == userID {
			return &m, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeChatStore) History(_ context.Context, userID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.UserID != nil && *m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type stubFetcher struct {
	text  string
	err   error
	calls int
}

func (f *stubFetcher) FetchJobPosting(_ context.Context, rawURL string) (*model.JobPosting, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.JobPosting{SourceURL: rawURL, CleanedText: f.text}, nil
}

type stubAnalyzer struct{ reply string }

func (s stubAnalyzer) AnalyzeResume(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", common.ErrNotReady
	}
	return s.reply, nil
}

func newChat(store *fakeChatStore, fetcher *stubFetcher, gen *fakeGenerator) *ChatUsecase {
	return NewChatUsecase(store, fetcher, gen, stubAnalyzer{reply: "Strong Go background."}, config.DefaultGenerationConfig(), logging.Discard())
}

func ptr(s string) *string { return &s }

func TestChatUsecase_BriefReplyWithoutContext(t *testing.T) {
	store := &fakeChatStore{}
	gen := &fakeGenerator{reply: "Assistant: Happy to help with your search."}
	uc := newChat(store, &stubFetcher{}, gen)

	reply, err := uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "  how do I start?  "})
	require.NoError(t, err)
	assert.Equal(t, "Happy to help with your search.", reply.Reply)

	req := gen.last()
	assert.Equal(t, "Provide a brief response (max 50 words) to: how do I start?", req.Inputs)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.3", req.Model)
	assert.Equal(t, 100, req.Parameters.MaxNewTokens)
	assert.InDelta(t, 0.95, req.Parameters.TopP, 1e-9)
	assert.True(t, req.Parameters.DoSample)

	require.Len(t, store.messages, 2)
	assert.Equal(t, model.RoleUser, store.messages[0].Role)
	assert.Equal(t, "how do I start?", store.messages[0].Message)
	assert.Nil(t, store.messages[0].UserID)
	assert.Equal(t, model.RoleAssistant, store.messages[1].Role)
}

func TestChatUsecase_URLMessageFetchesJob(t *testing.T) {
	store := &fakeChatStore{}
	fetcher := &stubFetcher{text: "Go Engineer at Acme"}
	gen := &fakeGenerator{reply: "Good match on Go."}
	uc := newChat(store, fetcher, gen)
	sess := &auth.Session{UserID: uuid.New()}

	reply, err := uc.ProcessMessage(context.Background(), sess, dto.ChatMessageRequest{
		Message:   "https://jobs.acme.io/42",
		CvContent: ptr("Five years of Go"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "Thanks for sharing! Here's a quick insight about the match between your resume and this job (max 50 words): Five years of Go Go Engineer at Acme", gen.last().Inputs)
	require.NotNil(t, reply.JobContent)
	assert.Equal(t, "Go Engineer at Acme", *reply.JobContent)

	for _, m := range store.messages {
		require.NotNil(t, m.UserID)
		assert.Equal(t, sess.UserID, *m.UserID)
		assert.Equal(t, "Five years of Go", *m.CvContent)
		assert.Equal(t, "Go Engineer at Acme", *m.JobContent)
	}
}

func TestChatUsecase_FetchFailure(t *testing.T) {
	store := &fakeChatStore{}
	gen := &fakeGenerator{reply: "x"}
	uc := newChat(store, &stubFetcher{err: common.ErrFetchFailed}, gen)

	_, err := uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "https://unreachable.invalid"})
	assert.ErrorIs(t, err, common.ErrFetchFailed)
	assert.Zero(t, gen.count())
	assert.Empty(t, store.messages)
}

func TestChatUsecase_RecruiterPromptRestoresContext(t *testing.T) {
	userID := uuid.New()
	store := &fakeChatStore{messages: []model.ChatMessage{
		{Role: model.RoleUser, Message: "Here is my CV", CvContent: ptr("CV TEXT"), JobContent: ptr("JOB TEXT"), UserID: &userID},
		{Role: model.RoleAssistant, Message: "Thanks!", CvContent: ptr("CV TEXT"), JobContent: ptr("JOB TEXT"), UserID: &userID},
	}}
	gen := &fakeGenerator{reply: "Lead with your API work. What team size do you prefer?"}
	uc := newChat(store, &stubFetcher{}, gen)

	reply, err := uc.ProcessMessage(context.Background(), &auth.Session{UserID: userID}, dto.ChatMessageRequest{Message: "What should I highlight?"})
	require.NoError(t, err)
	assert.Equal(t, "CV TEXT", *reply.CvContent)
	assert.Equal(t, "JOB TEXT", *reply.JobContent)

	prompt := gen.last().Inputs
	assert.True(t, strings.HasPrefix(prompt, "You are a senior recruitment professional."))
	assert.Contains(t, prompt, "Resume:\nCV TEXT")
	assert.Contains(t, prompt, "Job Description:\nJOB TEXT")
	assert.Contains(t, prompt, "User: Here is my CV\nAssistant: Thanks!")
	assert.True(t, strings.HasSuffix(prompt, "User: What should I highlight?\nAssistant:"))
	assert.Len(t, store.messages, 4)
}

func TestChatUsecase_TruncatesContext(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	uc := newChat(&fakeChatStore{}, &stubFetcher{}, gen)

	_, err := uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{
		Message:    "thoughts?",
		CvContent:  ptr(strings.Repeat("c", 5000)),
		JobContent: ptr("job"),
	})
	require.NoError(t, err)

	prompt := gen.last().Inputs
	assert.Contains(t, prompt, strings.Repeat("c", 4000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("c", 4001))
}

func TestChatUsecase_Failures(t *testing.T) {
	uc := newChat(&fakeChatStore{}, &stubFetcher{}, &fakeGenerator{reply: "ok"})
	_, err := uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "   "})
	assert.ErrorIs(t, err, common.ErrNotReady)

	uc = newChat(&fakeChatStore{}, &stubFetcher{}, &fakeGenerator{err: errors.New("503")})
	_, err = uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, common.ErrGenerationFailed)

	uc = newChat(&fakeChatStore{}, &stubFetcher{}, &fakeGenerator{reply: "[only markup]"})
	_, err = uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, common.ErrGenerationFailed)

	uc = newChat(&fakeChatStore{appendErr: errors.New("db down")}, &stubFetcher{}, &fakeGenerator{reply: "ok"})
	_, err = uc.ProcessMessage(context.Background(), nil, dto.ChatMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, common.ErrPersistenceFailed)
}

func TestChatUsecase_History(t *testing.T) {
	userID := uuid.New()
	store := &fakeChatStore{}
	uc := newChat(store, &stubFetcher{}, &fakeGenerator{reply: "ok"})

	messages, err := uc.History(context.Background(), nil, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, ChatGreeting, messages[0].Message)

	messages, err = uc.History(context.Background(), &auth.Session{UserID: userID}, 10)
	require.NoError(t, err)
	assert.Equal(t, ChatGreeting, messages[0].Message)

	store.messages = append(store.messages, model.ChatMessage{Role: model.RoleUser, Message: "hello", UserID: &userID})
	messages, err = uc.History(context.Background(), &auth.Session{UserID: userID}, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Message)
}

func TestChatUsecase_AnalyzeResume(t *testing.T) {
	userID := uuid.New()
	store := &fakeChatStore{messages: []model.ChatMessage{
		{Role: model.RoleAssistant, Message: "earlier", JobContent: ptr("JOB"), UserID: &userID},
	}}
	uc := newChat(store, &stubFetcher{}, &fakeGenerator{})

	reply, err := uc.AnalyzeResume(context.Background(), &auth.Session{UserID: userID}, "My CV")
	require.NoError(t, err)
	assert.Equal(t, "Strong Go background.", reply.Reply)
	assert.Equal(t, "My CV", *reply.CvContent)
	require.NotNil(t, reply.JobContent)
	assert.Equal(t, "JOB", *reply.JobContent)

	_, err = uc.AnalyzeResume(context.Background(), nil, " ")
	assert.ErrorIs(t, err, common.ErrNotReady)
}
