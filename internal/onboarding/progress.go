package onboarding

import "github.com/wakili/backend/internal/domain"

// StepState is the per-step flag set shown by the wizard's stepper.
type StepState struct {
	Step      domain.Step
	Name      string
	Completed bool
	Current   bool
}

// Progress summarises an application so a client can resume the wizard.
type Progress struct {
	CurrentStep     domain.Step
	CompletedSteps  []domain.Step
	Percent         int
	Status          domain.ApplicationStatus
	Steps           []StepState
	RejectionReason string
}

// ProgressOf computes the wizard progress of app. Review counts as a
// completed step only while the application is submitted or approved.
func ProgressOf(app domain.Application) Progress {
	current := app.CurrentStep
	if !current.Valid() {
		current = domain.StepBasicInfo
	}
	p := Progress{
		CurrentStep:     current,
		CompletedSteps:  append([]domain.Step{}, app.CompletedSteps...),
		Status:          app.Status,
		RejectionReason: app.RejectionReason,
		Steps:           make([]StepState, 0, domain.TotalSteps),
	}
	if p.Status == "" {
		p.Status = domain.ApplicationDraft
	}
	for s := domain.StepBasicInfo; s <= domain.StepReview; s++ {
		p.Steps = append(p.Steps, StepState{
			Step:      s,
			Name:      s.String(),
			Completed: app.IsCompleted(s),
			Current:   s == current,
		})
	}
	p.Percent = len(p.CompletedSteps) * 100 / domain.TotalSteps
	return p
}
