package domain

// LineRequest asks the ledger to commit quantity units of an item to a rental.
type LineRequest struct {
	ItemID   int32 `json:"item_id"`
	Quantity int32 `json:"quantity"`
}

// LineEdit changes an existing line. ProblemCount is only honoured by batch
// edits, where it drives the condition policy.
type LineEdit struct {
	LineID       int32         `json:"line_id"`
	Quantity     int32         `json:"quantity"`
	Condition    LineCondition `json:"condition"`
	ProblemCount int32         `json:"problem_count"`
}

// LineBatch is a full edit of one rental's line set, as submitted by the
// admin multi-row form.
type LineBatch struct {
	Create []LineRequest `json:"create"`
	Update []LineEdit    `json:"update"`
	Delete []int32       `json:"delete"`
}

func (b LineBatch) Empty() bool {
	return len(b.Create) == 0 && len(b.Update) == 0 && len(b.Delete) == 0
}

// ApplyProblemPolicy derives the condition of a line from its problem count.
// A Good line with problems becomes Damaged; a Damaged or Lost line whose
// problems were cleared goes back to Good.
func ApplyProblemPolicy(condition LineCondition, problemCount int32) LineCondition {
	switch {
	case problemCount > 0 && condition == LineConditionGood:
		return LineConditionDamaged
	case problemCount == 0 && (condition == LineConditionDamaged || condition == LineConditionLost):
		return LineConditionGood
	}
	return condition
}
