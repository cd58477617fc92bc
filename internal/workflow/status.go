package workflow

import (
	"sync"
	"time"
)

// Status is a progress message shown while an action runs. The messages are
// decoration only and never tied to real sub-progress.
type Status int

const (
	StatusOpeningWebsite Status = iota + 1
	StatusAnalyzingJob
	StatusJobLoaded
	StatusUploadResume
	StatusJobLoadFailed
	StatusResumeUploaded
	StatusResumeFailed
	StatusCreatingLetter
	StatusLetterCreated
	StatusGenerationFailed
)

var statusText = map[Status]struct{ code, message string }{
	StatusOpeningWebsite:   {"opening_website", "Opening website..."},
	StatusAnalyzingJob:     {"analyzing_job", "Analyzing job description..."},
	StatusJobLoaded:        {"job_loaded", "Job description loaded"},
	StatusUploadResume:     {"upload_resume", "Upload resume"},
	StatusJobLoadFailed:    {"job_load_failed", "Error loading job posting"},
	StatusResumeUploaded:   {"resume_uploaded", "Resume uploaded successfully"},
	StatusResumeFailed:     {"resume_failed", "Error reading resume"},
	StatusCreatingLetter:   {"creating_letter", "Creating cover letter..."},
	StatusLetterCreated:    {"letter_created", "Cover letter created"},
	StatusGenerationFailed: {"generation_failed", "Error generating cover letter"},
}

func (s Status) Code() string {
	if t, ok := statusText[s]; ok {
		return t.code
	}
	return "unknown"
}

func (s Status) Message() string {
	return statusText[s].message
}

func (s Status) String() string { return s.Code() }

// Declared orders the controller plays statuses in.
var (
	JobLoadingSequence = []Status{StatusOpeningWebsite, StatusAnalyzingJob}
	JobLoadedSequence  = []Status{StatusJobLoaded, StatusUploadResume}
)

// Event is a status together with the time it was reported.
type Event struct {
	Status Status
	At     time.Time
}

// Reporter receives statuses in the order they are played. Report must not
// block the action that reports.
type Reporter interface {
	Report(Status)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Status)

func (f ReporterFunc) Report(s Status) { f(s) }

// Recorder keeps the full ordered history of a session.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Report(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Status: s, At: r.now()})
}

func (r *Recorder) History() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// PacedReporter shows every status for at least delay before the next one, on
// its own goroutine. Report only enqueues, so a slow display never holds up the
// action. Nothing is dropped or reordered.
type PacedReporter struct {
	display func(Status)
	delay   time.Duration
	sleep   func(time.Duration)

	mu     sync.Mutex
	queue  []Status
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func NewPacedReporter(display func(Status), delay time.Duration) *PacedReporter {
	return newPacedReporter(display, delay, time.Sleep)
}

func newPacedReporter(display func(Status), delay time.Duration, sleep func(time.Duration)) *PacedReporter {
	r := &PacedReporter{
		display: display,
		delay:   delay,
		sleep:   sleep,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *PacedReporter) Report(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.queue = append(r.queue, s)

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting statuses and waits until the queued ones were shown.
func (r *PacedReporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.wake)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *PacedReporter) run() {
	defer close(r.done)
	for {
		s, ok, closed := r.next()
		if ok {
			r.display(s)
			r.sleep(r.delay)
			continue
		}
		if closed {
			return
		}
		<-r.wake
	}
}

func (r *PacedReporter) next() (Status, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return 0, false, r.closed
	}
	s := r.queue[0]
	r.queue = r.queue[1:]
	return s, true, r.closed
}

type multiReporter []Reporter

func (m multiReporter) Report(s Status) {
	for _, r := range m {
		r.Report(s)
	}
}
