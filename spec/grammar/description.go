package grammar

type Production struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

type Item struct {
	Production int    `json:"production"`
	Dot        int    `json:"dot"`
	Text       string `json:"text"`
}

type Transition struct {
	Symbol string `json:"symbol"`
	State  int    `json:"state"`
}

// State is a state of the LR(0) automaton. Closure holds the items the closure adds to the kernel.
// Reduce lists the productions of the reducible items, where the production 0 means accept.
type State struct {
	Number  int           `json:"number"`
	Kernel  []*Item       `json:"kernel"`
	Closure []*Item       `json:"closure"`
	Shift   []*Transition `json:"shift"`
	GoTo    []*Transition `json:"goto"`
	Reduce  []int         `json:"reduce"`
}

const (
	ActionTypeShift  = "shift"
	ActionTypeReduce = "reduce"
	ActionTypeAccept = "accept"
)

// Action is an entry of the ACTION table. State is set for a shift, and Production for a reduce.
type Action struct {
	Type       string `json:"type"`
	State      int    `json:"state,omitempty"`
	Production int    `json:"production,omitempty"`
}

// TableRow is the row of one state. A cell of Action holding more than one action is a conflict.
// Empty cells are omitted.
type TableRow struct {
	State  int                  `json:"state"`
	Action map[string][]*Action `json:"action"`
	GoTo   map[string]int       `json:"goto"`
}

// Table is an ACTION/GOTO table. Terminals and NonTerminals give the order of the columns.
type Table struct {
	Terminals    []string    `json:"terminals"`
	NonTerminals []string    `json:"non_terminals"`
	Rows         []*TableRow `json:"rows"`
}

const (
	ConflictKindShiftReduce  = "shift/reduce"
	ConflictKindReduceReduce = "reduce/reduce"
)

// Conflict describes one state of the LR(0) automaton in which the parser cannot decide its action.
// Symbol is empty for LR(0) conflicts because they don't depend on the next input symbol.
type Conflict struct {
	State       int    `json:"state"`
	Kind        string `json:"kind"`
	Symbol      string `json:"symbol,omitempty"`
	Productions []int  `json:"productions"`
}

type Class struct {
	Name      string      `json:"name"`
	OK        bool        `json:"ok"`
	Conflicts []*Conflict `json:"conflicts"`
	Table     *Table      `json:"table"`
}

type Report struct {
	Start       string        `json:"start"`
	Productions []*Production `json:"productions"`
	Nullable    []string      `json:"nullable"`
	StateCount  int           `json:"state_count"`
	States      []*State      `json:"states"`
	LR0         *Class        `json:"lr0"`
	SLR1        *Class        `json:"slr1"`
}
