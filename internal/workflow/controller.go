package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/util"
	"github.com/google/uuid"
)

// LetterWriter is the part of the cover letter service the flow drives.
type LetterWriter interface {
	Generate(ctx context.Context, resumeText, jobText, template string) (string, error)
	EditWithInstruction(ctx context.Context, currentLetter, instruction string) (string, error)
	ExtractJobTitle(ctx context.Context, jobText string) string
}

type Deps struct {
	Fetcher   service.JobFetcher
	Extractor service.ResumeExtractor
	Letters   LetterWriter
	Config    *config.GenerationConfig
	Log       logging.Logger
}

// Controller runs one guided session: url -> resume -> create -> view.
//
// Actions are serialized. While one is in flight every other action fails with
// common.ErrBusy, and an action requested at the wrong stage fails with
// common.ErrStageOrder. A failed action leaves the stage where it was and keeps
// what the user already entered.
type Controller struct {
	id       uuid.UUID
	deps     Deps
	recorder *Recorder
	reporter Reporter
	now      func() time.Time

	mu            sync.Mutex
	stage         Stage
	busy          bool
	lastErr       error
	jobURL        string
	job           *model.JobPosting
	keyDetails    *util.KeyDetails
	resume        *model.ResumeDocument
	letter        *model.CoverLetter
	template      string
	applicationID *uuid.UUID
}

// NewController starts a session at StageURL. Statuses go to the session's own
// history and, when extra is not nil, to extra as well.
func NewController(id uuid.UUID, deps Deps, extra Reporter) *Controller {
	if deps.Config == nil {
		deps.Config = config.DefaultGenerationConfig()
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	recorder := NewRecorder()
	var reporter Reporter = recorder
	if extra != nil {
		reporter = multiReporter{recorder, extra}
	}
	return &Controller{
		id:       id,
		deps:     deps,
		recorder: recorder,
		reporter: reporter,
		now:      time.Now,
		stage:    StageURL,
		template: deps.Config.CoverLetterPrompt,
	}
}

func (c *Controller) ID() uuid.UUID { return c.id }

// Busy reports whether an action is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// begin claims the session for one action allowed at the given stages and
// returns the stage it started from.
func (c *Controller) begin(allowed ...Stage) (Stage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.stage, common.ErrBusy
	}
	if !c.stage.in(allowed...) {
		return c.stage, fmt.Errorf("%w: %s", common.ErrStageOrder, c.stage)
	}
	c.busy = true
	return c.stage, nil
}

// finish releases the session, records the outcome and moves to next.
func (c *Controller) finish(next Stage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.stage = next
	c.lastErr = err
}

func (c *Controller) play(statuses ...Status) {
	for _, s := range statuses {
		c.reporter.Report(s)
	}
}

// LoadJob fetches and cleans the posting at rawURL. The URL is kept even when
// the fetch fails.
func (c *Controller) LoadJob(ctx context.Context, rawURL string) error {
	from, err := c.begin(StageURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.jobURL = strings.TrimSpace(rawURL)
	c.mu.Unlock()

	c.play(JobLoadingSequence...)
	posting, err := c.deps.Fetcher.FetchJobPosting(ctx, rawURL)
	if err != nil {
		c.deps.Log.Warn(ctx, "job posting load failed", "session", c.id, "error", err)
		c.play(StatusJobLoadFailed)
		c.finish(from, err)
		return err
	}

	details := util.ExtractKeyDetails(posting.CleanedText)
	c.mu.Lock()
	c.job = posting
	c.keyDetails = &details
	c.mu.Unlock()

	c.play(JobLoadedSequence...)
	c.finish(StageResume, nil)
	return nil
}

// AttachResume validates and extracts the uploaded résumé. With AutoGenerate
// configured the letter is generated right away.
func (c *Controller) AttachResume(ctx context.Context, upload service.ResumeUpload) error {
	from, err := c.begin(StageResume)
	if err != nil {
		return err
	}

	doc, err := c.deps.Extractor.Extract(ctx, upload)
	if err != nil {
		c.play(StatusResumeFailed)
		c.finish(from, err)
		return err
	}

	// the session only needs the extracted text
	doc.RawBytes = nil
	c.mu.Lock()
	c.resume = doc
	c.mu.Unlock()

	c.play(StatusResumeUploaded)
	c.finish(StageCreate, nil)

	if c.deps.Config.AutoGenerate {
		return c.Generate(ctx)
	}
	return nil
}

// Generate drafts a letter from the collected texts. It is the explicit
// re-trigger in StageView and replaces any edited letter.
func (c *Controller) Generate(ctx context.Context) error {
	from, err := c.begin(StageCreate, StageView)
	if err != nil {
		return err
	}

	c.mu.Lock()
	resumeText, jobText, template := c.resumeText(), c.jobText(), c.template
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobText) == "" {
		c.mu.Unlock()
		c.finish(from, nil)
		return fmt.Errorf("%w: both the job posting and the résumé are needed", common.ErrNotReady)
	}
	c.stage = StageGenerating
	c.mu.Unlock()

	c.play(StatusCreatingLetter)
	body, err := c.deps.Letters.Generate(ctx, resumeText, jobText, template)
	if err != nil {
		c.deps.Log.Warn(ctx, "cover letter generation failed", "session", c.id, "error", err)
		c.play(StatusGenerationFailed)
		c.finish(from, err)
		return err
	}
	title := c.deps.Letters.ExtractJobTitle(ctx, jobText)

	c.mu.Lock()
	c.letter = &model.CoverLetter{BodyText: body, GeneratedAt: c.now()}
	c.job.ExtractedTitle = title
	c.mu.Unlock()

	c.play(StatusLetterCreated)
	c.finish(StageView, nil)
	return nil
}

// Skip moves on to StageView without a letter.
func (c *Controller) Skip() error {
	if _, err := c.begin(StageCreate); err != nil {
		return err
	}
	c.finish(StageView, nil)
	return nil
}

// EditLetter replaces the letter with the user's own text.
func (c *Controller) EditLetter(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: cover letter text is empty", common.ErrNotReady)
	}
	if _, err := c.begin(StageView); err != nil {
		return err
	}

	c.mu.Lock()
	generatedAt := c.now()
	if c.letter != nil {
		generatedAt = c.letter.GeneratedAt
	}
	c.letter = &model.CoverLetter{BodyText: text, GeneratedAt: generatedAt, EditedByUser: true}
	c.mu.Unlock()

	c.finish(StageView, nil)
	return nil
}

// Refine rewrites the current letter following a free-text instruction.
func (c *Controller) Refine(ctx context.Context, instruction string) error {
	if _, err := c.begin(StageView); err != nil {
		return err
	}

	c.mu.Lock()
	current := ""
	if c.letter != nil {
		current = c.letter.BodyText
	}
	c.mu.Unlock()
	if strings.TrimSpace(current) == "" {
		c.finish(StageView, nil)
		return fmt.Errorf("%w: there is no cover letter to refine", common.ErrNotReady)
	}

	body, err := c.deps.Letters.EditWithInstruction(ctx, current, instruction)
	if err != nil {
		c.finish(StageView, err)
		return err
	}

	c.mu.Lock()
	c.letter = &model.CoverLetter{BodyText: body, GeneratedAt: c.now()}
	c.mu.Unlock()

	c.finish(StageView, nil)
	return nil
}

// SetTemplate overrides the prompt template for this session. An empty
// template restores the configured one.
func (c *Controller) SetTemplate(template string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	if strings.TrimSpace(template) == "" {
		template = c.deps.Config.CoverLetterPrompt
	}
	c.template = template
	return nil
}

// Application builds the record to persist from a finished session.
func (c *Controller) Application() (*model.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageView || c.busy {
		return nil, fmt.Errorf("%w: %s", common.ErrStageOrder, c.stage)
	}

	app := &model.Application{
		JobDescription: c.jobText(),
		CvContent:      c.resumeText(),
		JobURL:         c.jobURL,
		JobTitle:       util.DefaultJobTitle,
	}
	if c.job != nil && c.job.ExtractedTitle != "" {
		app.JobTitle = c.job.ExtractedTitle
	}
	if c.letter != nil {
		app.CoverLetter = c.letter.BodyText
	}
	if c.applicationID != nil {
		app.ID = *c.applicationID
	} else {
		app.Status = model.StatusWishlist
	}
	return app, nil
}

// MarkSaved remembers the stored record so later saves update it.
func (c *Controller) MarkSaved(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applicationID = &id
}

func (c *Controller) jobText() string {
	if c.job == nil {
		return ""
	}
	return c.job.CleanedText
}

func (c *Controller) resumeText() string {
	if c.resume == nil {
		return ""
	}
	return c.resume.ExtractedText
}

// Snapshot is a copy of a session's state.
type Snapshot struct {
	ID            uuid.UUID
	Stage         Stage
	Busy          bool
	Err           error
	JobURL        string
	Job           *model.JobPosting
	KeyDetails    *util.KeyDetails
	Resume        *model.ResumeDocument
	Letter        *model.CoverLetter
	Template      string
	ApplicationID *uuid.UUID
	History       []Event
}

// DisplayStage is the stage to show: StageError while the last action failed.
func (s Snapshot) DisplayStage() Stage {
	if s.Err != nil {
		return StageError
	}
	return s.Stage
}

// CanGenerate reports whether both texts are present.
func (s Snapshot) CanGenerate() bool {
	return s.Job != nil && strings.TrimSpace(s.Job.CleanedText) != "" &&
		s.Resume != nil && strings.TrimSpace(s.Resume.ExtractedText) != ""
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:       c.id,
		Stage:    c.stage,
		Busy:     c.busy,
		Err:      c.lastErr,
		JobURL:   c.jobURL,
		Template: c.template,
		History:  c.recorder.History(),
	}
	if c.job != nil {
		job := *c.job
		s.Job = &job
	}
	if c.keyDetails != nil {
		kd := *c.keyDetails
		kd.Skills = append([]string(nil), kd.Skills...)
		kd.EmploymentTypes = append([]string(nil), kd.EmploymentTypes...)
		s.KeyDetails = &kd
	}
	if c.resume != nil {
		doc := *c.resume
		doc.RawBytes = nil
		s.Resume = &doc
	}
	if c.letter != nil {
		letter := *c.letter
		s.Letter = &letter
	}
	if c.applicationID != nil {
		id := *c.applicationID
		s.ApplicationID = &id
	}
	return s
}
