package enums

import "fmt"

// LabelStage tracks a private label design through the approval pipeline.
type LabelStage string

const (
	LabelStageDesignInProgress      LabelStage = "design_in_progress"
	LabelStageAwaitingStoreApproval LabelStage = "awaiting_store_approval"
	LabelStageStoreApproved         LabelStage = "store_approved"
	LabelStageSubmittedToOLCC       LabelStage = "submitted_to_olcc"
	LabelStageOLCCApproved          LabelStage = "olcc_approved"
	LabelStagePrintOrderSubmitted   LabelStage = "print_order_submitted"
	LabelStageReadyForProduction    LabelStage = "ready_for_production"
)

// LabelStages lists every stage in pipeline order.
var LabelStages = []LabelStage{
	LabelStageDesignInProgress,
	LabelStageAwaitingStoreApproval,
	LabelStageStoreApproved,
	LabelStageSubmittedToOLCC,
	LabelStageOLCCApproved,
	LabelStagePrintOrderSubmitted,
	LabelStageReadyForProduction,
}

func (s LabelStage) String() string {
	return string(s)
}

func (s LabelStage) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the zero-based pipeline position, or -1 for unknown stages.
func (s LabelStage) Index() int {
	for i, candidate := range LabelStages {
		if candidate == s {
			return i
		}
	}
	return -1
}

func ParseLabelStage(value string) (LabelStage, error) {
	stage := LabelStage(value)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid label stage %q", value)
	}
	return stage, nil
}
