package types

// Direction is the classifier's assessment of how the likelihood of the
// tracked policy staying in place has moved.
type Direction string

const (
	DirectionIncreased Direction = "Increased"
	DirectionDecreased Direction = "Decreased"
	DirectionUnchanged Direction = "Unchanged"
	DirectionUnclear   Direction = "Unclear"
)

// NormalizeDirection maps arbitrary classifier output onto a known
// Direction, defaulting to Unclear.
func NormalizeDirection(s string) Direction {
	switch Direction(s) {
	case DirectionIncreased, DirectionDecreased, DirectionUnchanged, DirectionUnclear:
		return Direction(s)
	}
	return DirectionUnclear
}

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
	SideNone Side = ""
)

// Opposite inverts a trade side; None stays None.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	}
	return SideNone
}

// Signal is the structured classifier output for one post. Ephemeral,
// produced once per cycle.
type Signal struct {
	Subject   string    `json:"subject"`
	Direction Direction `json:"direction"`
	Rationale string    `json:"rationale"`
}

// Decision is derived purely from a Signal and the mapping table. A
// non-actionable decision carries an empty instrument and SideNone.
type Decision struct {
	Instrument string
	Side       Side
}

func (d Decision) Actionable() bool {
	return d.Instrument != "" && d.Side != SideNone
}

// Quote is a point-in-time price snapshot fetched immediately before
// sizing. Never cached across cycles.
type Quote struct {
	Ask  float64
	Last float64
}

type OrderReq struct {
	Symbol string
	Side   Side
	Qty    int
}

// Submission is the transport-level outcome of one broker submission
// call. The execution engine resolves it into an OrderResult.
type Submission struct {
	StatusCode int
	Location   string
}

type OrderState string

const (
	OrderPending     OrderState = "PENDING"
	OrderSubmitted   OrderState = "SUBMITTED"
	OrderConfirmed   OrderState = "CONFIRMED"
	OrderUnconfirmed OrderState = "UNCONFIRMED"
	OrderFailed      OrderState = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s OrderState) Terminal() bool {
	return s == OrderConfirmed || s == OrderUnconfirmed || s == OrderFailed
}

type OrderResult struct {
	OrderID string
	State   OrderState
}

// StepResult summarizes one loop cycle for logging and notification.
type StepResult struct {
	Fingerprint string       `json:"fingerprint"`
	Signal      *Signal      `json:"signal,omitempty"`
	Decision    Decision     `json:"-"`
	Order       *OrderResult `json:"order,omitempty"`
	Reason      string       `json:"reason"`
}
