package core

import "fmt"

// StageName identifies one step of the reasoning pipeline.
type StageName string

const (
	StagePrimary             StageName = "primary"
	StageKeyPoints           StageName = "key_points"
	StageRetrievalQuality    StageName = "retrieval_quality"
	StageRefusalAssessment   StageName = "refusal_assessment"
	StageSemanticConsistency StageName = "semantic_consistency"
	StageHallucinationCheck  StageName = "hallucination_check"
	StageIntegration         StageName = "integration"
)

// StageStatus is the lifecycle state of a stage within a single run.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s StageStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether a stage may move from one status to another.
// The only legal moves are pending -> running and running -> completed|failed.
func CanTransition(from, to StageStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// StageDescriptor is the static description of a pipeline stage.
type StageDescriptor struct {
	Name      StageName
	Order     int // 1-based position in the pipeline
	DependsOn []StageName
}

// DependsOnStage reports whether d reads the output of the named stage.
func (d StageDescriptor) DependsOnStage(name StageName) bool {
	for _, dep := range d.DependsOn {
		if dep == name {
			return true
		}
	}
	return false
}

// Stages returns the fixed stage table, ordered by execution order.
// The returned slice is a fresh copy.
func Stages() []StageDescriptor {
	return []StageDescriptor{
		{Name: StagePrimary, Order: 1},
		{Name: StageKeyPoints, Order: 2, DependsOn: []StageName{StagePrimary}},
		{Name: StageRetrievalQuality, Order: 3, DependsOn: []StageName{StageKeyPoints}},
		{Name: StageRefusalAssessment, Order: 4, DependsOn: []StageName{StagePrimary}},
		{Name: StageSemanticConsistency, Order: 5, DependsOn: []StageName{StagePrimary}},
		{Name: StageHallucinationCheck, Order: 6, DependsOn: []StageName{StagePrimary}},
		{Name: StageIntegration, Order: 7, DependsOn: []StageName{
			StagePrimary,
			StageKeyPoints,
			StageRetrievalQuality,
			StageRefusalAssessment,
			StageSemanticConsistency,
			StageHallucinationCheck,
		}},
	}
}

// ValidateDescriptors checks that descriptors are numbered 1..n in slice order,
// that names are unique, and that every dependency refers to an earlier stage.
func ValidateDescriptors(descriptors []StageDescriptor) error {
	if len(descriptors) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidStageTable)
	}

	orders := make(map[StageName]int, len(descriptors))
	for i, d := range descriptors {
		if d.Name == "" {
			return fmt.Errorf("%w: stage %d has no name", ErrInvalidStageTable, i+1)
		}
		if d.Order != i+1 {
			return fmt.Errorf("%w: stage %q has order %d, expected %d", ErrInvalidStageTable, d.Name, d.Order, i+1)
		}
		if _, dup := orders[d.Name]; dup {
			return fmt.Errorf("%w: duplicate stage %q", ErrInvalidStageTable, d.Name)
		}
		for _, dep := range d.DependsOn {
			depOrder, ok := orders[dep]
			if !ok || depOrder >= d.Order {
				return fmt.Errorf("%w: stage %q depends on %q which does not run before it", ErrInvalidStageTable, d.Name, dep)
			}
		}
		orders[d.Name] = d.Order
	}
	return nil
}
