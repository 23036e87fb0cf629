package path

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// CurriculumGenerator produces the module plan for a topic. Implementations
// are expected to be LLM-backed; the orchestrator substitutes a minimal
// fallback curriculum when generation fails.
type CurriculumGenerator interface {
	GenerateCurriculum(ctx context.Context, topic, proficiencyLevel, commitmentLevel string, durationWeeks float64) (Curriculum, error)
}

// QuizGenerator produces module quiz questions. On failure the orchestrator
// substitutes a single placeholder question.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, moduleTitle string, subtopics []string, numQuestions int) ([]Question, error)
}

// ResourceFinder locates external learning resources for one session topic.
// Implementations absorb search failures and return fallback resources, so
// there is no error return.
type ResourceFinder interface {
	FindSessionResources(ctx context.Context, mainTopic, sessionTopic string) []Resource
}

// Availability estimates the learner's free study time, typically from a
// connected calendar. A nil Availability bypasses calendar analysis.
type Availability interface {
	WeeklyFreeHours(ctx context.Context) (float64, error)
}

const (
	defaultWeeklyFreeHours = 10
	defaultQuizQuestions   = 5
)

// Request holds the inputs for one orchestration run. Explicit proficiency
// and commitment levels, when valid, override classification.
type Request struct {
	Topic               string
	AssessmentResponses []AssessmentResponse
	ProficiencyLevel    string
	CommitmentLevel     string
	StartDate           time.Time
	EndDate             time.Time
	PreferredTime       string
}

// OrchestratorConfig holds the collaborators for an Orchestrator.
type OrchestratorConfig struct {
	Curriculum   CurriculumGenerator
	Quizzes      QuizGenerator
	Resources    ResourceFinder
	Availability Availability // optional
}

// Orchestrator drives the learning-path pipeline: profiling, curriculum and
// scheduling run strictly in sequence, then resource discovery and
// assessment generation run concurrently against the schedule before the
// final path is compiled.
type Orchestrator struct {
	curriculum   CurriculumGenerator
	quizzes      QuizGenerator
	resources    ResourceFinder
	availability Availability
}

// NewOrchestrator creates an orchestrator. Curriculum, Quizzes and Resources
// are required.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Curriculum == nil {
		return nil, fmt.Errorf("curriculum generator is required")
	}
	if cfg.Quizzes == nil {
		return nil, fmt.Errorf("quiz generator is required")
	}
	if cfg.Resources == nil {
		return nil, fmt.Errorf("resource finder is required")
	}
	return &Orchestrator{
		curriculum:   cfg.Curriculum,
		quizzes:      cfg.Quizzes,
		resources:    cfg.Resources,
		availability: cfg.Availability,
	}, nil
}

// runContext is the typed state passed between stages. Each stage reads the
// fields written by earlier stages and writes its own; the two concurrent
// stages own disjoint fields (sessionResources vs assessments) that are
// merged at the join point.
type runContext struct {
	req Request
	bus *ProgressBus

	profile          UserProfile
	curriculum       Curriculum
	schedule         []Session
	scheduleWarnings []string
	sessionResources [][]Resource
	assessments      []Quiz
}

// stage is one phase of the pipeline. The stage set is closed: profiling,
// curriculum, scheduling, resources and assessments.
type stage interface {
	name() string
	run(ctx context.Context, rc *runContext) error
}

// Run executes the full pipeline and returns the compiled learning path.
// Collaborator failures inside a stage are degraded to fallback values and
// never abort the run; only cancellation or slot-allocation exhaustion do.
func (o *Orchestrator) Run(ctx context.Context, req Request, bus *ProgressBus) (LearningPath, error) {
	rc := &runContext{req: req, bus: bus}

	sequential := []stage{
		profileStage{availability: o.availability},
		curriculumStage{generator: o.curriculum},
		scheduleStage{},
	}
	for _, s := range sequential {
		if err := ctx.Err(); err != nil {
			return LearningPath{}, err
		}
		slog.Info("stage starting", "stage", s.name(), "topic", req.Topic)
		if err := s.run(ctx, rc); err != nil {
			return LearningPath{}, fmt.Errorf("%s stage: %w", s.name(), err)
		}
	}

	// Resources and assessments only need the schedule; run them
	// concurrently and merge their outputs after the join.
	g, gctx := errgroup.WithContext(ctx)
	resStage := resourceStage{finder: o.resources}
	assessStage := assessmentStage{generator: o.quizzes}
	g.Go(func() error { return resStage.run(gctx, rc) })
	g.Go(func() error { return assessStage.run(gctx, rc) })
	if err := g.Wait(); err != nil {
		return LearningPath{}, err
	}
	for i := range rc.schedule {
		rc.schedule[i].Resources = rc.sessionResources[i]
	}

	return compile(rc), nil
}

func compile(rc *runContext) LearningPath {
	return LearningPath{
		Topic:       rc.req.Topic,
		UserProfile: rc.profile,
		Curriculum:  rc.curriculum,
		Schedule:    rc.schedule,
		Assessments: rc.assessments,
		Status:      "active",
		Progress: Progress{
			TotalModules:  len(rc.curriculum.Modules),
			TotalSessions: len(rc.schedule),
		},
	}
}

type profileStage struct {
	availability Availability
}

func (profileStage) name() string { return "profiling" }

func (s profileStage) run(ctx context.Context, rc *runContext) error {
	rc.bus.Progress(PhaseProfiling, "Analyzing your proficiency level...", nil)

	level := rc.req.ProficiencyLevel
	if !ValidProficiency(level) {
		level = ClassifyProficiency(rc.req.Topic, rc.req.AssessmentResponses).Level
	}

	weeklyFreeHours := float64(defaultWeeklyFreeHours)
	calendarAnalyzed := false
	if s.availability != nil {
		hours, err := s.availability.WeeklyFreeHours(ctx)
		if err != nil {
			slog.Warn("calendar analysis failed", "error", err)
		} else {
			weeklyFreeHours = hours
			calendarAnalyzed = true
		}
	}

	commitment := ClassifyCommitment(weeklyFreeHours, rc.req.CommitmentLevel)
	preset := PresetFor(commitment)

	rc.profile = UserProfile{
		Topic:                  rc.req.Topic,
		ProficiencyLevel:       level,
		CommitmentLevel:        commitment,
		WeeklyFreeHours:        weeklyFreeHours,
		SessionDurationMinutes: preset.SessionDurationMinutes,
		PreferredTimes:         []string{preferredOrDefault(rc.req.PreferredTime)},
		CalendarAnalyzed:       calendarAnalyzed,
	}

	rc.bus.Progress(PhaseProfiling,
		fmt.Sprintf("Profile complete: %s level, %s commitment", level, commitment), nil)
	return nil
}

func preferredOrDefault(name string) string {
	if _, ok := preferredHours[name]; ok {
		return name
	}
	return "evening"
}

type curriculumStage struct {
	generator CurriculumGenerator
}

func (curriculumStage) name() string { return "curriculum" }

func (s curriculumStage) run(ctx context.Context, rc *runContext) error {
	rc.bus.Progress(PhaseCurriculum,
		fmt.Sprintf("Generating curriculum for %s...", rc.req.Topic), nil)

	curriculum, err := s.generator.GenerateCurriculum(ctx,
		rc.req.Topic, rc.profile.ProficiencyLevel, rc.profile.CommitmentLevel,
		durationWeeks(rc.req.StartDate, rc.req.EndDate))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("curriculum generation failed, using fallback", "error", err)
		curriculum = FallbackCurriculum(rc.req.Topic)
	}
	rc.curriculum = curriculum

	rc.bus.Progress(PhaseCurriculum,
		fmt.Sprintf("Curriculum ready: %s", curriculumPreview(curriculum)), nil)
	return nil
}

// durationWeeks derives the available weeks from a fixed date range,
// returning 0 when no constraint applies.
func durationWeeks(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}
	days := end.Sub(start).Hours() / 24
	return math.Max(1, math.Round(days/7*10)/10)
}

func curriculumPreview(c Curriculum) string {
	preview := ""
	for i, m := range c.Modules {
		if i == 3 {
			preview += fmt.Sprintf("... (%d total)", len(c.Modules))
			break
		}
		if i > 0 {
			preview += ", "
		}
		preview += m.Title
	}
	return preview
}

// FallbackCurriculum is the minimal single-module plan substituted when
// curriculum generation fails.
func FallbackCurriculum(topic string) Curriculum {
	return Curriculum{
		Topic:              topic,
		TotalDurationWeeks: 4,
		Modules: []Module{{
			ModuleID:           "m1",
			Title:              "Introduction to " + topic,
			DurationHours:      4,
			LearningObjectives: []string{"Understand basic concepts", "Build foundational knowledge"},
			Subtopics: []Subtopic{
				{Title: "Fundamentals", Description: "Learn about Fundamentals", EstimatedMinutes: 30},
				{Title: "Core Concepts", Description: "Learn about Core Concepts", EstimatedMinutes: 30},
			},
			Prerequisites: []string{},
		}},
	}
}

type scheduleStage struct{}

func (scheduleStage) name() string { return "scheduling" }

func (s scheduleStage) run(ctx context.Context, rc *runContext) error {
	rc.bus.Progress(PhaseScheduling, "Creating your study schedule...", nil)

	total := 0
	for _, m := range rc.curriculum.Modules {
		if len(m.Subtopics) > 0 {
			total += len(m.Subtopics)
		} else {
			total++
		}
	}

	preset := PresetFor(rc.profile.CommitmentLevel)
	slots, warnings, err := AllocateSlots(SlotRequest{
		Count:           total,
		DurationMinutes: preset.SessionDurationMinutes,
		SessionsPerWeek: preset.SessionsPerWeek,
		StartDate:       rc.req.StartDate,
		EndDate:         rc.req.EndDate,
		PreferredTime:   rc.req.PreferredTime,
		SkipWeekends:    preset.SessionsPerWeek <= 5,
	})
	if err != nil {
		return err
	}
	rc.scheduleWarnings = warnings
	for _, w := range warnings {
		slog.Warn("schedule warning", "warning", w)
	}

	schedule := make([]Session, 0, total)
	number := 1
	for _, m := range rc.curriculum.Modules {
		subtopics := m.Subtopics
		if len(subtopics) == 0 {
			subtopics = []Subtopic{{
				Title:       m.Title,
				Description: "Introduction to " + m.Title,
			}}
		}
		for _, st := range subtopics {
			if number > len(slots) {
				break
			}
			slot := slots[number-1]
			duration := slot.DurationMinutes
			if st.EstimatedMinutes > 0 {
				duration = st.EstimatedMinutes
			}
			description := st.Description
			if description == "" {
				description = "Learn about " + st.Title
			}
			schedule = append(schedule, Session{
				SessionID:          fmt.Sprintf("s%d", number),
				ModuleID:           m.ModuleID,
				ModuleTitle:        m.Title,
				SessionTopic:       st.Title,
				SessionDescription: description,
				LearningObjectives: m.LearningObjectives,
				ScheduledTime:      slot.Start,
				DurationMinutes:    duration,
				SessionNumber:      number,
				TotalSessions:      total,
				Resources:          []Resource{},
			})
			number++
		}
	}
	rc.schedule = schedule

	report := ValidateSchedule(schedule)
	for _, c := range report.Conflicts {
		slog.Warn("schedule conflict", "conflict", c)
	}
	rc.scheduleWarnings = append(rc.scheduleWarnings, report.Warnings...)

	var data map[string]any
	if len(rc.scheduleWarnings) > 0 {
		data = map[string]any{"warnings": rc.scheduleWarnings}
	}
	rc.bus.Progress(PhaseScheduling,
		fmt.Sprintf("Schedule created with %d sessions", len(schedule)), data)
	return nil
}

type resourceStage struct {
	finder ResourceFinder
}

func (resourceStage) name() string { return "resources" }

func (s resourceStage) run(ctx context.Context, rc *runContext) error {
	total := len(rc.schedule)
	rc.bus.Progress(PhaseResources,
		fmt.Sprintf("Finding resources for %d sessions...", total), nil)

	found := make([][]Resource, total)
	totalResources := 0
	for i, session := range rc.schedule {
		if err := ctx.Err(); err != nil {
			return err
		}
		topic := session.SessionTopic
		if topic == "" {
			topic = session.ModuleTitle
		}
		rc.bus.Progress(PhaseResources,
			fmt.Sprintf("Finding resources for %s...", topic),
			map[string]any{"current": i + 1, "total": total})

		resources := s.finder.FindSessionResources(ctx, rc.req.Topic, topic)
		found[i] = resources
		totalResources += len(resources)

		rc.bus.Progress(PhaseResources,
			fmt.Sprintf("%d resources found for %s (%d/%d)", len(resources), topic, i+1, total),
			map[string]any{"current": i + 1, "total": total, "resources_found": len(resources)})
	}
	rc.sessionResources = found

	rc.bus.Progress(PhaseResources,
		fmt.Sprintf("Resource discovery complete: %d resources for %d sessions", totalResources, total), nil)
	return nil
}

type assessmentStage struct {
	generator QuizGenerator
}

func (assessmentStage) name() string { return "assessments" }

func (s assessmentStage) run(ctx context.Context, rc *runContext) error {
	total := len(rc.curriculum.Modules)
	rc.bus.Progress(PhaseAssessments,
		fmt.Sprintf("Generating quizzes for %d modules...", total), nil)

	quizzes := make([]Quiz, 0, total)
	for i, m := range rc.curriculum.Modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		subtopics := make([]string, 0, len(m.Subtopics))
		for _, st := range m.Subtopics {
			subtopics = append(subtopics, st.Title)
		}

		questions, err := s.generator.GenerateQuiz(ctx, m.Title, subtopics, defaultQuizQuestions)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("quiz generation failed, using placeholder",
				"module", m.ModuleID, "error", err)
			questions = []Question{placeholderQuestion()}
		}

		quizzes = append(quizzes, Quiz{
			ModuleID:       m.ModuleID,
			ModuleTitle:    m.Title,
			AssessmentType: "module_quiz",
			Questions:      questions,
			TotalQuestions: len(questions),
		})

		rc.bus.Progress(PhaseAssessments,
			fmt.Sprintf("Quiz ready for %s (%d/%d)", m.Title, i+1, total),
			map[string]any{"current": i + 1, "total": total})
	}
	rc.assessments = quizzes
	return nil
}

func placeholderQuestion() Question {
	return Question{
		Question: "Sample question - quiz generation temporarily unavailable",
		Options: map[string]string{
			"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D",
		},
		CorrectAnswer: "A",
		Explanation:   "This is a placeholder question",
	}
}
