package posting

// DefaultRequiredApprovals は要求を公開するために必要な承認数の既定値です。
const DefaultRequiredApprovals = 1

var transitions = map[Status][]Status{
	StatusDraft:     {StatusActive, StatusCancelled},
	StatusActive:    {StatusClosed, StatusCancelled, StatusDraft},
	StatusClosed:    {StatusActive},
	StatusCancelled: nil,
}

// Policy は求人ステータスの遷移可否と副作用を決定します。
type Policy struct {
	RequiredApprovals int
}

// NewPolicy は Policy を生成します。requiredApprovals が 0 以下の場合は既定値を利用します。
func NewPolicy(requiredApprovals int) Policy {
	if requiredApprovals <= 0 {
		requiredApprovals = DefaultRequiredApprovals
	}
	return Policy{RequiredApprovals: requiredApprovals}
}

// IsValidStatus は定義済みのステータスかどうかを返します。
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// Initial は種別ごとの初期ステータスと公開状態を返します。
func (Policy) Initial(kind Kind) (Status, bool) {
	if kind == KindClientPosition {
		return StatusActive, true
	}
	return StatusDraft, false
}

// CanTransition は from から to への遷移が許可されているかを返します。
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition は p を target に遷移させ、公開状態を合わせて更新します。
// 同一ステータスへの遷移は何もしません。失敗時に p は変更されません。
func (pol Policy) Transition(p *Posting, target Status, approvals int) error {
	if !IsValidStatus(target) {
		return ErrInvalidStatus
	}
	if p.Status == target {
		return nil
	}
	if !CanTransition(p.Status, target) {
		return ErrInvalidTransition
	}
	if p.Kind == KindRequisition && p.Status == StatusDraft && target == StatusActive {
		required := pol.RequiredApprovals
		if required <= 0 {
			required = DefaultRequiredApprovals
		}
		if approvals < required {
			return ErrInsufficientApprovals
		}
	}

	p.Status = target
	p.Published = target == StatusActive
	return nil
}
